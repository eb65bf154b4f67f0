package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
)

// Saver persists the unseen items of a batch.
type Saver interface {
	SaveNew(ctx context.Context, items []models.NewsItem, tag string) ([]models.PersistedNews, error)
}

// Counter counts stored records.
type Counter interface {
	Count(ctx context.Context, f storage.ListFilter) (int, error)
}

// RecordSummarizer summarizes a stored record and persists the result.
type RecordSummarizer interface {
	SummarizeRecord(ctx context.Context, rec *models.PersistedNews) (string, error)
}

// Archiver uploads a snapshot of newly saved records.
type Archiver interface {
	Archive(ctx context.Context, tag string, records []models.PersistedNews) (string, error)
}

// ProcessResult reports one processing run.
type ProcessResult struct {
	Selector        Selector `json:"selector"`
	Tag             string   `json:"tag"`
	Fetched         int      `json:"fetched"`
	Saved           int      `json:"saved"`
	Summarized      int      `json:"summarized"`
	TotalInDatabase int      `json:"total_in_database"`
	ArchiveKey      string   `json:"archive_key,omitempty"`
	Cached          bool     `json:"cached"`
}

// Processor fetches a selector, stores what is new and optionally
// summarizes and archives it.
type Processor struct {
	aggregator *Aggregator
	cache      cache.Store
	saver      Saver
	counter    Counter
	summarizer RecordSummarizer
	archiver   Archiver
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithSummarizer summarizes every newly saved record.
func WithSummarizer(s RecordSummarizer) ProcessorOption {
	return func(p *Processor) { p.summarizer = s }
}

// WithArchiver uploads newly saved records after each run.
func WithArchiver(a Archiver) ProcessorOption {
	return func(p *Processor) { p.archiver = a }
}

// NewProcessor creates a processor. store is the short-lived tier that keeps
// repeated runs from refetching the same feeds.
func NewProcessor(aggregator *Aggregator, store cache.Store, saver Saver, counter Counter, opts ...ProcessorOption) *Processor {
	p := &Processor{
		aggregator: aggregator,
		cache:      store,
		saver:      saver,
		counter:    counter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one fetch-and-save cycle for sel.
func (p *Processor) Process(ctx context.Context, sel Selector) (*ProcessResult, error) {
	if !sel.Valid() {
		return nil, &UnsupportedSelectorError{Selector: string(sel)}
	}

	log := logger.Component("feed")
	start := time.Now()
	result := &ProcessResult{Selector: sel, Tag: sel.Tag()}

	key := "process:" + string(sel)
	items, ok := p.cache.Get(ctx, key)
	if ok {
		result.Cached = true
	} else {
		var err error
		items, err = p.aggregator.Live(ctx, sel)
		if err != nil {
			return nil, err
		}
		p.cache.Put(ctx, key, items)
	}
	result.Fetched = len(items)

	saved, err := p.saver.SaveNew(ctx, items, result.Tag)
	if err != nil {
		return nil, fmt.Errorf("save %s news: %w", sel, err)
	}
	result.Saved = len(saved)

	// New records mean the cached general listing is stale.
	if sel.General() && len(saved) > 0 {
		p.aggregator.Invalidate(ctx, sel)
	}

	if p.summarizer != nil {
		for i := range saved {
			if ctx.Err() != nil {
				break
			}
			if _, err := p.summarizer.SummarizeRecord(ctx, &saved[i]); err != nil {
				log.Warn().Err(err).Int64("id", saved[i].ID).Msg("Failed to summarize record")
				continue
			}
			result.Summarized++
		}
	}

	if p.archiver != nil && len(saved) > 0 {
		key, err := p.archiver.Archive(ctx, result.Tag, saved)
		if err != nil {
			log.Error().Err(err).Str("tag", result.Tag).Msg("Failed to archive snapshot")
		} else {
			result.ArchiveKey = key
		}
	}

	total, err := p.counter.Count(ctx, storage.ListFilter{Tags: []string{result.Tag}})
	if err != nil {
		return nil, fmt.Errorf("count %s news: %w", sel, err)
	}
	result.TotalInDatabase = total

	log.Info().
		Str("selector", string(sel)).
		Int("fetched", result.Fetched).
		Int("saved", result.Saved).
		Int("summarized", result.Summarized).
		Bool("cached", result.Cached).
		Dur("duration", time.Since(start)).
		Msg("Finished processing news")

	return result, nil
}
