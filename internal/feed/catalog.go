package feed

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultCatalog []byte

// Catalog is the YAML document describing every feed source.
type Catalog struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig holds the scraping rules for one publisher feed.
type SourceConfig struct {
	Name        string   `yaml:"name"`
	Publisher   string   `yaml:"publisher"`
	Selector    Selector `yaml:"selector"`
	Language    string   `yaml:"language"`
	URLEnv      string   `yaml:"url_env"`
	InsecureTLS bool     `yaml:"insecure_tls"`

	// Category overrides the feed's own category when set.
	Category string `yaml:"category"`

	// Description is "description" (default) or "title".
	Description              string `yaml:"description"`
	DescriptionFallbackTitle bool   `yaml:"description_fallback_title"`

	Image ImageRules `yaml:"image"`
}

// ImageRules picks an image URL for an item.
type ImageRules struct {
	// Strategies are tried in order: enclosure, media_content,
	// media_thumbnail, content.
	Strategies []string `yaml:"strategies"`
	// Pattern is the regex used by the content strategy.
	Pattern     string    `yaml:"pattern"`
	Rewrites    []Rewrite `yaml:"rewrites"`
	Placeholder bool      `yaml:"placeholder"`

	pattern *regexp.Regexp
}

// Rewrite is a source-specific fix applied to an extracted image URL.
//
//	replace:     replace every Old with New
//	truncate_at: cut at the first Marker and append Suffix
//	https:       upgrade http:// to https://
//
// When Host is set the rewrite only applies to URLs containing it.
type Rewrite struct {
	Type   string `yaml:"type"`
	Host   string `yaml:"host"`
	Old    string `yaml:"old"`
	New    string `yaml:"new"`
	Marker string `yaml:"marker"`
	Suffix string `yaml:"suffix"`
}

const defaultImagePattern = `https?://[^\s"'<>]+\.jpe?g`

// LoadCatalog reads the source catalog at path, or the embedded default
// when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read feed catalog: %w", err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode feed catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i := range c.Sources {
		sc := &c.Sources[i]
		if err := sc.validate(); err != nil {
			return nil, err
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("feed catalog: duplicate source %q", sc.Name)
		}
		seen[sc.Name] = true
	}
	return &c, nil
}

func (sc *SourceConfig) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("feed catalog: source without name")
	}
	if !sc.Selector.Valid() {
		return fmt.Errorf("feed catalog: source %s: unknown selector %q", sc.Name, sc.Selector)
	}
	if sc.URLEnv == "" {
		return fmt.Errorf("feed catalog: source %s: url_env is required", sc.Name)
	}
	switch sc.Language {
	case "", "en", "np":
	default:
		return fmt.Errorf("feed catalog: source %s: unknown language %q", sc.Name, sc.Language)
	}
	switch sc.Description {
	case "", "description", "title":
	default:
		return fmt.Errorf("feed catalog: source %s: unknown description field %q", sc.Name, sc.Description)
	}
	for _, s := range sc.Image.Strategies {
		switch s {
		case strategyEnclosure, strategyMediaContent, strategyMediaThumbnail, strategyContent:
		default:
			return fmt.Errorf("feed catalog: source %s: unknown image strategy %q", sc.Name, s)
		}
	}
	for _, rw := range sc.Image.Rewrites {
		switch rw.Type {
		case "replace", "truncate_at", "https":
		default:
			return fmt.Errorf("feed catalog: source %s: unknown rewrite %q", sc.Name, rw.Type)
		}
	}

	pattern := sc.Image.Pattern
	if pattern == "" {
		pattern = defaultImagePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("feed catalog: source %s: image pattern: %w", sc.Name, err)
	}
	sc.Image.pattern = re
	return nil
}

// BySelector returns the sources of sel in catalog order.
func (c *Catalog) BySelector(sel Selector) []SourceConfig {
	var out []SourceConfig
	for _, sc := range c.Sources {
		if sc.Selector == sel {
			out = append(out, sc)
		}
	}
	return out
}
