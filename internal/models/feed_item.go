package models

// Language is the language of a fetched article
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageNepali  Language = "np"
)

// NewsItem is a normalized article as fetched from a source feed.
// PubDate keeps the publisher's raw string; it is not reparsed here.
type NewsItem struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	Link        string   `json:"link" validate:"required,url"`
	PubDate     string   `json:"pubDate"`
	Category    string   `json:"category,omitempty"`
	Image       string   `json:"image,omitempty"`
	Publisher   string   `json:"publisher"`
	Language    Language `json:"language,omitempty" validate:"omitempty,oneof=en np"`
}
