package ai

import (
	"unicode"
	"unicode/utf8"
)

// Languages reported by DetectLanguage.
const (
	LanguageNepali  = "nepali"
	LanguageEnglish = "english"
)

// DetectLanguage reports "nepali" when more than 30% of the runes of text
// are Devanagari, "english" otherwise.
func DetectLanguage(text string) string {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return LanguageEnglish
	}
	var devanagari int
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			devanagari++
		}
	}
	if float64(devanagari) > float64(total)*0.3 {
		return LanguageNepali
	}
	return LanguageEnglish
}
