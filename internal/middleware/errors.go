package middleware

import (
	"errors"
	"net/http"

	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a handler to its HTTP status.
func StatusFor(err error) int {
	var (
		fiberErr    *fiber.Error
		unsupported *feed.UnsupportedSelectorError
		empty       *feed.EmptyResultError
		summarize   *ai.SummarizationError
		persist     *storage.PersistenceError
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &unsupported), errors.Is(err, ai.ErrNothingToSummarize):
		return fiber.StatusBadRequest
	case errors.As(err, &empty), errors.Is(err, storage.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &summarize):
		return fiber.StatusBadGateway
	case errors.As(err, &persist):
		return fiber.StatusInternalServerError
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the fiber error handler. Client errors carry their
// message; server errors are logged and reported by status text only.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)

	event := logger.Get().Warn()
	if code >= fiber.StatusInternalServerError {
		event = logger.Get().Error()
	}
	event.
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	message := err.Error()
	if code >= fiber.StatusInternalServerError && code != fiber.StatusBadGateway {
		message = http.StatusText(code)
	}
	return c.Status(code).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
