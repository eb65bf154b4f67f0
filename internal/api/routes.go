package api

import (
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, adminKey string) {
	admin := middleware.AdminOnly(adminKey)

	api := app.Group("/api/v1")
	api.Get("/health", h.HealthCheck)

	// Aggregated feeds straight from the sources
	news := api.Group("/news")
	news.Get("", h.GetNews)
	news.Get("/international", h.LiveNews(feed.SelectorInternational))
	news.Get("/sports", h.LiveNews(feed.SelectorSports))
	news.Get("/tech", h.LiveNews(feed.SelectorTech))

	// Stored records per category
	list := middleware.ValidateQuery(listDefaults)
	for _, cat := range categories {
		g := api.Group("/" + cat.name + "-news")
		g.Post("/process", admin, h.ProcessAsync(cat))
		g.Post("/process-sync", admin, h.ProcessSync(cat))
		g.Get("", list, h.ListStored(cat, false))
		g.Get("/summarized", list, h.ListStored(cat, true))
		g.Get("/stats", h.Stats(cat))
		g.Post("/summarize/:id", h.SummarizeStored(cat))
		g.Get("/:id", h.GetStored(cat))
		g.Delete("/:id", admin, h.DeleteStored(cat))
	}

	aiGroup := api.Group("/ai")
	aiGroup.Get("/summarize", h.Summarize)
	aiGroup.Post("/summarize", h.Summarize)
	aiGroup.Get("/ask", middleware.ValidateQuery[askQuery](nil), h.Ask)
	aiGroup.Post("/chat", middleware.ValidateBody[chatRequest](), h.Chat)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
