package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
)

// SummaryStore persists a generated summary.
type SummaryStore interface {
	UpdateSummary(ctx context.Context, id int64, summary string, at time.Time) error
}

// Summarizer produces short summaries through a Completer.
type Summarizer struct {
	completer Completer
	store     SummaryStore
	model     string
	now       func() time.Time
}

// NewSummarizer creates a summarizer. store may be nil when only ad-hoc
// summaries are needed; a nil clock uses time.Now.
func NewSummarizer(c Completer, store SummaryStore, model string, clock func() time.Time) *Summarizer {
	if clock == nil {
		clock = time.Now
	}
	return &Summarizer{completer: c, store: store, model: model, now: clock}
}

// Summarize returns a cleaned summary of text using model, or the default
// model when empty.
func (s *Summarizer) Summarize(ctx context.Context, text, model string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingToSummarize
	}
	if model == "" {
		model = s.model
	}

	resp, err := s.completer.Complete(ctx, model, BuildSummaryMessages(text))
	if err != nil {
		return "", &SummarizationError{Err: err}
	}
	summary := CleanSummary(resp.Content)
	if summary == "" {
		return "", &SummarizationError{Err: errors.New("model returned an empty summary")}
	}
	return summary, nil
}

// SummarizeRecord summarizes rec and stores the result. A record that is
// already summarized returns its stored summary without calling the model.
// On failure rec and the database are left unchanged.
func (s *Summarizer) SummarizeRecord(ctx context.Context, rec *models.PersistedNews) (string, error) {
	if rec.IsSummarized && rec.Summary != nil {
		return *rec.Summary, nil
	}

	summary, err := s.Summarize(ctx, rec.Text(), "")
	if err != nil {
		return "", err
	}

	now := s.now()
	if s.store != nil {
		if err := s.store.UpdateSummary(ctx, rec.ID, summary, now); err != nil {
			return "", err
		}
	}

	rec.Summary = &summary
	rec.IsSummarized = true
	rec.UpdatedAt = now

	logger.Get().Debug().
		Int64("id", rec.ID).
		Int("words", WordCount(summary)).
		Msg("Summarized news record")
	return summary, nil
}
