package feed

import (
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const (
	strategyEnclosure      = "enclosure"
	strategyMediaContent   = "media_content"
	strategyMediaThumbnail = "media_thumbnail"
	strategyContent        = "content"
)

var defaultImageRE = regexp.MustCompile(defaultImagePattern)

// extractImage runs the strategies of rules in order and returns the first
// hit after rewrites, or "" when nothing matched.
func extractImage(item *gofeed.Item, rules ImageRules) string {
	for _, strategy := range rules.Strategies {
		var found string
		switch strategy {
		case strategyEnclosure:
			found = enclosureImage(item)
		case strategyMediaContent:
			found = mediaContentImage(item)
		case strategyMediaThumbnail:
			found = mediaThumbnailImage(item)
		case strategyContent:
			found = contentImage(item, rules)
		}
		if found != "" {
			return rewriteImage(found, rules.Rewrites)
		}
	}
	return ""
}

func enclosureImage(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func mediaContentImage(item *gofeed.Item) string {
	for _, m := range mediaElements(item, "content") {
		if m.Attrs["medium"] == "image" || strings.HasPrefix(m.Attrs["type"], "image/") {
			if u := m.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}

func mediaThumbnailImage(item *gofeed.Item) string {
	for _, m := range mediaElements(item, "thumbnail") {
		if u := m.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

// mediaElements returns media:<name> elements of item, including those
// nested in a media:group.
func mediaElements(item *gofeed.Item, name string) []ext.Extension {
	media, ok := item.Extensions["media"]
	if !ok {
		return nil
	}
	out := append([]ext.Extension(nil), media[name]...)
	for _, group := range media["group"] {
		out = append(out, group.Children[name]...)
	}
	return out
}

func contentImage(item *gofeed.Item, rules ImageRules) string {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	if body == "" {
		return ""
	}
	re := rules.pattern
	if re == nil {
		re = defaultImageRE
	}
	return re.FindString(body)
}

func rewriteImage(url string, rewrites []Rewrite) string {
	for _, rw := range rewrites {
		if rw.Host != "" && !strings.Contains(url, rw.Host) {
			continue
		}
		switch rw.Type {
		case "replace":
			url = strings.ReplaceAll(url, rw.Old, rw.New)
		case "truncate_at":
			if i := strings.Index(url, rw.Marker); i >= 0 {
				url = url[:i] + rw.Suffix
			}
		case "https":
			if strings.HasPrefix(url, "http://") {
				url = "https://" + strings.TrimPrefix(url, "http://")
			}
		}
	}
	return url
}
