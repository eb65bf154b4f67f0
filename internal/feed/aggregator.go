package feed

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
)

// PubDateLayout is the only layout used to order general news. Dates in any
// other format sort as the oldest items.
const PubDateLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

// Aggregator merges the items of every source registered for a selector.
type Aggregator struct {
	registry    *Registry
	cache       cache.Store
	wordLimit   int
	concurrency int
	shuffle     func([]models.NewsItem)
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWordLimit sets the content word budget for general selectors.
func WithWordLimit(n int) AggregatorOption {
	return func(a *Aggregator) { a.wordLimit = n }
}

// WithConcurrency sets how many sources are fetched at once.
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithShuffle replaces the random shuffle applied before sorting.
func WithShuffle(fn func([]models.NewsItem)) AggregatorOption {
	return func(a *Aggregator) { a.shuffle = fn }
}

// NewAggregator creates an aggregator over registry caching general
// selectors in store.
func NewAggregator(registry *Registry, store cache.Store, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry:    registry,
		cache:       store,
		wordLimit:   150,
		concurrency: 1,
		shuffle: func(items []models.NewsItem) {
			rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate returns the news of sel. General selectors are served from the
// cache when fresh; otherwise fetched, shuffled, sorted newest first,
// truncated and cached. Other selectors are fetched live.
func (a *Aggregator) Aggregate(ctx context.Context, sel Selector) ([]models.NewsItem, error) {
	if !sel.Valid() {
		return nil, &UnsupportedSelectorError{Selector: string(sel)}
	}
	if !sel.General() {
		return a.Live(ctx, sel)
	}

	if items, ok := a.cache.Get(ctx, string(sel)); ok {
		logger.Component("feed").Debug().Str("selector", string(sel)).Int("items", len(items)).Msg("serving news from cache")
		return items, nil
	}
	return a.Refresh(ctx, sel)
}

// Refresh fetches a general selector regardless of the cache and rewrites
// its cache entry.
func (a *Aggregator) Refresh(ctx context.Context, sel Selector) ([]models.NewsItem, error) {
	if !sel.Valid() {
		return nil, &UnsupportedSelectorError{Selector: string(sel)}
	}

	items, err := a.Live(ctx, sel)
	if err != nil {
		return nil, err
	}

	a.shuffle(items)
	SortByPubDate(items)
	for i := range items {
		items[i].Content = TruncateWords(items[i].Content, a.wordLimit)
	}

	a.cache.Put(ctx, string(sel), items)
	return items, nil
}

// Invalidate drops the cached list of sel.
func (a *Aggregator) Invalidate(ctx context.Context, sel Selector) {
	a.cache.Delete(ctx, string(sel))
}

// Live fetches every source of sel and concatenates the successful results
// in registration order. Failing sources are logged and skipped.
func (a *Aggregator) Live(ctx context.Context, sel Selector) ([]models.NewsItem, error) {
	if !sel.Valid() {
		return nil, &UnsupportedSelectorError{Selector: string(sel)}
	}

	log := logger.Component("feed")
	start := time.Now()
	sources := a.registry.Sources(sel)
	results := make([][]models.NewsItem, len(sources))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.concurrency)

	for i, src := range sources {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			defer func() { <-semaphore }()

			items, err := src.Fetch(ctx)
			if err != nil {
				var sfe *SourceFetchError
				if !errors.As(err, &sfe) {
					err = &SourceFetchError{Source: src.Name(), Err: err}
				}
				log.Warn().
					Err(err).
					Str("selector", string(sel)).
					Str("source", src.Name()).
					Msg("Skipping source")
				return
			}
			log.Debug().
				Str("source", src.Name()).
				Int("items", len(items)).
				Msg("Fetched source")
			results[i] = items
		}(i, src)
	}
	wg.Wait()

	var all []models.NewsItem
	for _, items := range results {
		all = append(all, items...)
	}

	log.Info().
		Str("selector", string(sel)).
		Int("sources", len(sources)).
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Aggregated news")

	if len(all) == 0 {
		return nil, &EmptyResultError{Selector: sel}
	}
	return all, nil
}

// SortByPubDate orders items newest first by PubDateLayout. The sort is
// stable, so items with equal or unparseable dates keep their order.
func SortByPubDate(items []models.NewsItem) {
	keys := make([]time.Time, len(items))
	for i, item := range items {
		keys[i] = parsePubDate(item.PubDate)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return keys[idx[i]].After(keys[idx[j]])
	})
	sorted := make([]models.NewsItem, len(items))
	for i, k := range idx {
		sorted[i] = items[k]
	}
	copy(items, sorted)
}

func parsePubDate(s string) time.Time {
	t, err := time.Parse(PubDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
