package feed

import (
	"fmt"
	"strings"

	"github.com/bilgisen/khabar/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/mmcdole/gofeed"
)

// Parser turns parsed feed entries into NewsItems using a source's rules.
type Parser struct {
	validate    *validator.Validate
	placeholder string
}

// NewParser creates a parser. placeholder is the image used by sources
// that opt into a fallback image.
func NewParser(placeholder string) *Parser {
	return &Parser{
		validate:    validator.New(),
		placeholder: placeholder,
	}
}

// NormalizeFeedItem maps one entry to a NewsItem.
func (p *Parser) NormalizeFeedItem(item *gofeed.Item, sc SourceConfig) models.NewsItem {
	title := DecodeTitle(item.Title)

	description := strings.TrimSpace(item.Description)
	if sc.Description == "title" {
		description = strings.TrimSpace(item.Title)
	}
	if description == "" && sc.DescriptionFallbackTitle {
		description = title
	}

	// Prefer the full text over the summary when the feed carries both.
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}

	category := sc.Category
	if category == "" && len(item.Categories) > 0 {
		category = strings.TrimSpace(item.Categories[0])
	}

	image := extractImage(item, sc.Image)
	if image == "" && sc.Image.Placeholder {
		image = p.placeholder
	}

	return models.NewsItem{
		Title:       title,
		Description: description,
		Content:     StripHTML(body),
		Link:        strings.TrimSpace(item.Link),
		PubDate:     strings.TrimSpace(item.Published),
		Category:    category,
		Image:       image,
		Publisher:   sc.Publisher,
		Language:    models.Language(sc.Language),
	}
}

// ValidateFeedItem checks if the item has the required fields
func (p *Parser) ValidateFeedItem(item models.NewsItem) error {
	if err := p.validate.Struct(item); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+":"+fe.Tag())
			}
			return fmt.Errorf("invalid item %q: %s", item.Title, strings.Join(fields, ","))
		}
		return fmt.Errorf("invalid item %q: %w", item.Title, err)
	}
	return nil
}

// ParseItems normalizes every entry of f. One invalid entry fails the whole
// call; partial results are never returned.
func (p *Parser) ParseItems(f *gofeed.Feed, sc SourceConfig) ([]models.NewsItem, error) {
	items := make([]models.NewsItem, 0, len(f.Items))
	for i, entry := range f.Items {
		if entry == nil {
			continue
		}
		item := p.NormalizeFeedItem(entry, sc)
		if err := p.ValidateFeedItem(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
