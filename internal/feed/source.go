package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/khabar/internal/models"
)

// Source fetches the current items of one publisher feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.NewsItem, error)
}

// RSSSource is a Source reading an RSS or Atom feed with catalog rules.
type RSSSource struct {
	cfg     SourceConfig
	url     string
	fetcher *Fetcher
	parser  *Parser
}

// NewRSSSource creates a source for cfg reading from url.
func NewRSSSource(cfg SourceConfig, url string, fetcher *Fetcher, parser *Parser) *RSSSource {
	return &RSSSource{cfg: cfg, url: url, fetcher: fetcher, parser: parser}
}

func (s *RSSSource) Name() string {
	return s.cfg.Name
}

// Fetch downloads and normalizes the feed. Every failure is returned as a
// *SourceFetchError.
func (s *RSSSource) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if s.url == "" {
		return nil, &SourceFetchError{Source: s.cfg.Name, Err: fmt.Errorf("feed URL not configured (%s)", s.cfg.URLEnv)}
	}

	parsed, err := s.fetcher.FetchFeed(ctx, s.url)
	if err != nil {
		return nil, &SourceFetchError{Source: s.cfg.Name, Err: err}
	}

	items, err := s.parser.ParseItems(parsed, s.cfg)
	if err != nil {
		return nil, &SourceFetchError{Source: s.cfg.Name, Err: err}
	}
	return items, nil
}

// Registry maps selectors to their ordered source sets.
type Registry struct {
	sources map[Selector][]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[Selector][]Source)}
}

// Register appends src to the sources of sel.
func (r *Registry) Register(sel Selector, src Source) {
	r.sources[sel] = append(r.sources[sel], src)
}

// Sources returns the sources of sel in registration order.
func (r *Registry) Sources(sel Selector) []Source {
	return r.sources[sel]
}

// SourceOptions configures sources built from a catalog.
type SourceOptions struct {
	Timeout     time.Duration
	Placeholder string
	// LookupURL resolves a source's url_env to its feed URL.
	LookupURL func(env string) (string, bool)
}

// BuildRegistry creates RSS sources for every catalog entry. Sources whose
// URL variable is unset are still registered and fail on fetch, so the
// aggregator reports them like any other broken source.
func BuildRegistry(c *Catalog, opts SourceOptions) *Registry {
	parser := NewParser(opts.Placeholder)
	secure := NewFetcher(opts.Timeout, false)
	insecure := NewFetcher(opts.Timeout, true)

	reg := NewRegistry()
	for _, sel := range Selectors {
		for _, sc := range c.BySelector(sel) {
			url := ""
			if opts.LookupURL != nil {
				url, _ = opts.LookupURL(sc.URLEnv)
			}
			fetcher := secure
			if sc.InsecureTLS {
				fetcher = insecure
			}
			reg.Register(sel, NewRSSSource(sc, url, fetcher, parser))
		}
	}
	return reg
}
