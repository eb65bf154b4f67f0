package ai

import (
	"regexp"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	scriptTags   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	fencePrefix  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
)

// CleanSummary normalizes model output before it is stored: code fences,
// script tags and control characters are removed, whitespace is collapsed
// and wrapping quotes are dropped.
func CleanSummary(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = fencePrefix.ReplaceAllString(s, "")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = scriptTags.ReplaceAllString(s, "")
	s = cleanText(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// cleanText removes control characters and normalizes whitespace
func cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
