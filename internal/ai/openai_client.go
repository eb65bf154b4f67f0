package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint,
// such as the Hugging Face router.
type OpenAIClient struct {
	client      *resty.Client
	model       string
	temperature float64
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIClient creates a client for baseURL authenticated with token.
func NewOpenAIClient(baseURL, token, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json"),
		model:       model,
		temperature: 0.2,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, model string, messages []Message) (*Completion, error) {
	if model == "" {
		model = c.model
	}

	var resp chatResponse
	r, err := c.client.R().
		SetContext(ctx).
		SetBody(chatRequest{Model: model, Messages: messages, Temperature: c.temperature}).
		SetResult(&resp).
		SetError(&resp).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if r.IsError() {
		return nil, fmt.Errorf("API error: status %d", r.StatusCode())
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	if resp.Model == "" {
		resp.Model = model
	}
	return &Completion{
		ID:      resp.ID,
		Model:   resp.Model,
		Content: resp.Choices[0].Message.Content,
		Usage:   resp.Usage,
	}, nil
}
