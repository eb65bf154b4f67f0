package feed

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
)

// DecodeTitle unescapes HTML entities until the string stops changing, so
// double-encoded titles such as "&amp;amp;" resolve fully.
func DecodeTitle(title string) string {
	for {
		decoded := html.UnescapeString(title)
		if decoded == title {
			return strings.TrimSpace(decoded)
		}
		title = decoded
	}
}

// StripHTML returns the text of an HTML fragment with one line per text
// node. Script and style bodies are dropped.
func StripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var lines []string
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
			return
		case xhtml.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}

// TruncateWords keeps the first limit words of s and appends "..." when
// anything was cut. A limit of zero disables truncation.
func TruncateWords(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ") + "..."
}
