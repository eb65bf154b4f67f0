package feed

import (
	"strings"

	"github.com/bilgisen/khabar/internal/models"
)

// Selector picks the set of sources to aggregate.
type Selector string

const (
	SelectorEnglish       Selector = "en"
	SelectorNepali        Selector = "np"
	SelectorInternational Selector = "international"
	SelectorSports        Selector = "sports"
	SelectorTech          Selector = "tech"
)

// Selectors lists every supported selector in a stable order.
var Selectors = []Selector{
	SelectorEnglish,
	SelectorNepali,
	SelectorInternational,
	SelectorSports,
	SelectorTech,
}

// ParseSelector maps user input to a Selector.
func ParseSelector(s string) (Selector, error) {
	sel := Selector(strings.ToLower(strings.TrimSpace(s)))
	if !sel.Valid() {
		return "", &UnsupportedSelectorError{Selector: s}
	}
	return sel, nil
}

// Valid reports whether s is one of the known selectors.
func (s Selector) Valid() bool {
	for _, known := range Selectors {
		if s == known {
			return true
		}
	}
	return false
}

// General reports whether s is a general news selector. General selectors
// are cached, date sorted and truncated; the rest are served live.
func (s Selector) General() bool {
	return s == SelectorEnglish || s == SelectorNepali
}

// Tag returns the partition tag used when items of s are persisted.
func (s Selector) Tag() string {
	switch s {
	case SelectorEnglish:
		return models.TagNepaliEn
	case SelectorNepali:
		return models.TagNepaliNp
	case SelectorInternational:
		return models.TagInternational
	case SelectorSports:
		return models.TagSports
	case SelectorTech:
		return models.TagTech
	}
	return ""
}
