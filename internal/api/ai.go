package api

import (
	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type summarizeRequest struct {
	NewsContent string `json:"news_content" query:"news_content"`
	Model       string `json:"model" query:"model"`
}

type askQuery struct {
	Q     string `query:"q" validate:"required"`
	Model string `query:"model"`
}

type chatRequest struct {
	Messages []ai.Message `json:"messages" validate:"required,min=1,dive"`
	Model    string       `json:"model"`
}

func (h *Handlers) model(requested string) string {
	if requested != "" {
		return requested
	}
	return h.Model
}

func (h *Handlers) requireLLM() error {
	if h.Summarizer == nil || h.Completer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "LLM is not configured")
	}
	return nil
}

// Summarize handles GET and POST /ai/summarize.
func (h *Handlers) Summarize(c *fiber.Ctx) error {
	if err := h.requireLLM(); err != nil {
		return err
	}

	var req summarizeRequest
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	} else if err := c.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	model := h.model(req.Model)
	summary, err := h.Summarizer.Summarize(c.UserContext(), req.NewsContent, model)
	if err != nil {
		return err
	}
	return success(c, fiber.Map{
		"summary":           summary,
		"word_count":        ai.WordCount(summary),
		"detected_language": ai.DetectLanguage(req.NewsContent),
		"model":             model,
	})
}

// Ask handles GET /ai/ask?q=...
func (h *Handlers) Ask(c *fiber.Ctx) error {
	if err := h.requireLLM(); err != nil {
		return err
	}
	q := middleware.Query[askQuery](c)

	answer, err := ai.Ask(c.UserContext(), h.Completer, h.model(q.Model), q.Q)
	if err != nil {
		return &ai.SummarizationError{Err: err}
	}
	return success(c, fiber.Map{"answer": answer})
}

// Chat handles POST /ai/chat with a message list.
func (h *Handlers) Chat(c *fiber.Ctx) error {
	if err := h.requireLLM(); err != nil {
		return err
	}
	req := middleware.Body[chatRequest](c)

	resp, err := h.Completer.Complete(c.UserContext(), h.model(req.Model), req.Messages)
	if err != nil {
		return &ai.SummarizationError{Err: err}
	}
	return success(c, fiber.Map{
		"answer": resp.Content,
		"raw":    resp,
	})
}
