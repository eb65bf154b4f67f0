package models

import "time"

// Partition tags stored on persisted records
const (
	TagInternational = "international_news"
	TagSports        = "sports_news"
	TagTech          = "tech_news"
	TagNepaliNp      = "nepaliNewsNp"
	TagNepaliEn      = "nepaliNewsEn"
)

// PersistedNews is a stored article. It is created by the dedup gate and
// only ever changed by summarization.
type PersistedNews struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description"`
	Content      *string   `db:"content" json:"content"`
	Link         string    `db:"link" json:"link"`
	PubDate      *string   `db:"pub_date" json:"pub_date"`
	Category     *string   `db:"category" json:"category"`
	Image        *string   `db:"image" json:"image"`
	Publisher    *string   `db:"publisher" json:"publisher"`
	Tag          string    `db:"tag" json:"tag"`
	Summary      *string   `db:"summary" json:"summary"`
	IsSummarized bool      `db:"is_summarized" json:"is_summarized"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// NewPersistedNews builds an unsaved record for item under tag.
func NewPersistedNews(item NewsItem, tag string, now time.Time) *PersistedNews {
	return &PersistedNews{
		Title:       item.Title,
		Description: optional(item.Description),
		Content:     optional(item.Content),
		Link:        item.Link,
		PubDate:     optional(item.PubDate),
		Category:    optional(item.Category),
		Image:       optional(item.Image),
		Publisher:   optional(item.Publisher),
		Tag:         tag,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Text returns the description and content joined for summarization,
// description first.
func (n *PersistedNews) Text() string {
	var text string
	if n.Description != nil && *n.Description != "" {
		text += *n.Description + "\n\n"
	}
	if n.Content != nil {
		text += *n.Content
	}
	return text
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
