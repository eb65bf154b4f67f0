package api

import (
	"time"

	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// category groups the selectors whose records are served under one
// /{name}-news prefix.
type category struct {
	name      string
	selectors []feed.Selector
}

var categories = []category{
	{name: "nepali", selectors: []feed.Selector{feed.SelectorEnglish, feed.SelectorNepali}},
	{name: "international", selectors: []feed.Selector{feed.SelectorInternational}},
	{name: "sports", selectors: []feed.Selector{feed.SelectorSports}},
	{name: "tech", selectors: []feed.Selector{feed.SelectorTech}},
}

func (cat category) tags() []string {
	tags := make([]string, len(cat.selectors))
	for i, sel := range cat.selectors {
		tags[i] = sel.Tag()
	}
	return tags
}

// filterTags narrows the tags by language, which only applies to
// categories with more than one selector.
func (cat category) filterTags(language string) []string {
	if language == "" || len(cat.selectors) == 1 {
		return cat.tags()
	}
	for _, sel := range cat.selectors {
		if string(sel) == language {
			return []string{sel.Tag()}
		}
	}
	return cat.tags()
}

type listQuery struct {
	Limit    int    `query:"limit" validate:"min=1,max=200"`
	Offset   int    `query:"offset" validate:"min=0"`
	Language string `query:"language" validate:"omitempty,oneof=en np"`
}

func listDefaults(q *listQuery) {
	q.Limit = 20
}

// ListStored returns stored records of the category, newest first. When
// summarizedOnly is set only summarized records are listed.
func (h *Handlers) ListStored(cat category, summarizedOnly bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := middleware.Query[listQuery](c)
		filter := storage.ListFilter{
			Tags:   cat.filterTags(q.Language),
			Limit:  q.Limit,
			Offset: q.Offset,
		}
		if summarizedOnly {
			yes := true
			filter.Summarized = &yes
		}

		records, err := h.Store.List(c.UserContext(), filter)
		if err != nil {
			return err
		}
		total, err := h.Store.Count(c.UserContext(), filter)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"status": "success",
			"data":   records,
			"total":  total,
			"limit":  q.Limit,
			"offset": q.Offset,
		})
	}
}

type tagStats struct {
	Tag           string     `json:"tag"`
	Total         int        `json:"total"`
	Summarized    int        `json:"summarized"`
	LatestCreated *time.Time `json:"latest_created_at"`
}

// Stats reports record counts per tag of the category.
func (h *Handlers) Stats(cat category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		yes := true
		var all, summarized int
		perTag := make([]tagStats, 0, len(cat.selectors))

		for _, tag := range cat.tags() {
			total, err := h.Store.Count(ctx, storage.ListFilter{Tags: []string{tag}})
			if err != nil {
				return err
			}
			done, err := h.Store.Count(ctx, storage.ListFilter{Tags: []string{tag}, Summarized: &yes})
			if err != nil {
				return err
			}
			latest, err := h.Store.LatestCreated(ctx, tag)
			if err != nil {
				return err
			}

			perTag = append(perTag, tagStats{Tag: tag, Total: total, Summarized: done, LatestCreated: latest})
			all += total
			summarized += done
		}

		return success(c, fiber.Map{
			"category":        cat.name,
			"total_news":      all,
			"summarized_news": summarized,
			"unsummarized":    all - summarized,
			"tags":            perTag,
		})
	}
}

func recordID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid news id")
	}
	return int64(id), nil
}

// GetStored returns one record of the category.
func (h *Handlers) GetStored(cat category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := recordID(c)
		if err != nil {
			return err
		}
		rec, err := h.Store.Get(c.UserContext(), id, cat.tags()...)
		if err != nil {
			return err
		}
		return success(c, rec)
	}
}

// DeleteStored deletes one record of the category.
func (h *Handlers) DeleteStored(cat category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := recordID(c)
		if err != nil {
			return err
		}
		if err := h.Store.Delete(c.UserContext(), id, cat.tags()...); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"status":  "deleted",
			"message": "News item deleted successfully",
			"id":      id,
		})
	}
}

// SummarizeStored summarizes one record of the category and stores the
// summary.
func (h *Handlers) SummarizeStored(cat category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h.Summarizer == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "summarization is not configured")
		}
		id, err := recordID(c)
		if err != nil {
			return err
		}
		rec, err := h.Store.Get(c.UserContext(), id, cat.tags()...)
		if err != nil {
			return err
		}
		if _, err := h.Summarizer.SummarizeRecord(c.UserContext(), rec); err != nil {
			return err
		}
		return success(c, rec)
	}
}
