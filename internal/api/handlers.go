package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const version = "1.0.0"

// Deps are the collaborators served over HTTP. Summarizer and Completer may
// be nil when no LLM is configured.
type Deps struct {
	Aggregator *feed.Aggregator
	Processor  *feed.Processor
	Store      *storage.Store
	Summarizer *ai.Summarizer
	Completer  ai.Completer
	Model      string
	// JobTimeout bounds background processing started by a request.
	JobTimeout time.Duration
}

type Handlers struct {
	Deps
	started time.Time
}

func NewHandlers(d Deps) *Handlers {
	if d.JobTimeout <= 0 {
		d.JobTimeout = 30 * time.Minute
	}
	return &Handlers{Deps: d, started: time.Now()}
}

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

type newsQuery struct {
	Language string `query:"language"`
}

// GetNews handles GET /news?language=en|np with the cached general feed.
func (h *Handlers) GetNews(c *fiber.Ctx) error {
	q := newsQuery{Language: string(feed.SelectorEnglish)}
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(q.Language) == "" {
		q.Language = string(feed.SelectorEnglish)
	}

	sel, err := feed.ParseSelector(q.Language)
	if err != nil {
		return err
	}
	if !sel.General() {
		return &feed.UnsupportedSelectorError{Selector: q.Language}
	}

	items, err := h.Aggregator.Aggregate(c.UserContext(), sel)
	if err != nil {
		return err
	}
	return success(c, items)
}

// LiveNews serves a live selector without caching.
func (h *Handlers) LiveNews(sel feed.Selector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := h.Aggregator.Aggregate(c.UserContext(), sel)
		if err != nil {
			return err
		}
		return success(c, items)
	}
}

// processAll runs the processor for every selector of a category. A
// selector without news is skipped unless all of them come back empty.
func (h *Handlers) processAll(ctx context.Context, cat category) ([]*feed.ProcessResult, error) {
	results := make([]*feed.ProcessResult, 0, len(cat.selectors))
	var lastEmpty error
	for _, sel := range cat.selectors {
		res, err := h.Processor.Process(ctx, sel)
		var empty *feed.EmptyResultError
		if errors.As(err, &empty) {
			logger.Get().Warn().Err(err).Str("category", cat.name).Msg("No news to process")
			lastEmpty = err
			continue
		}
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	if len(results) == 0 && lastEmpty != nil {
		return nil, lastEmpty
	}
	return results, nil
}

// ProcessAsync starts processing in the background and returns at once.
func (h *Handlers) ProcessAsync(cat category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.Get()
		log.Info().
			Str("category", cat.name).
			Str("ip", c.IP()).
			Msg("Starting background news processing")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), h.JobTimeout)
			defer cancel()

			start := time.Now()
			results, err := h.processAll(ctx, cat)
			if err != nil {
				log.Error().
					Err(err).
					Str("category", cat.name).
					Msg("Background processing failed")
				return
			}
			log.Info().
				Str("category", cat.name).
				Interface("results", results).
				Dur("duration", time.Since(start)).
				Msg("Background processing finished")
		}()

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status":  "started",
			"message": "Processing " + cat.name + " news in the background",
		})
	}
}

// ProcessSync processes the category within the request.
func (h *Handlers) ProcessSync(cat category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		results, err := h.processAll(c.UserContext(), cat)
		if err != nil {
			return err
		}
		return success(c, results)
	}
}
