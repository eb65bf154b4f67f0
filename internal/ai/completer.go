// Package ai wraps chat-completion backends used to summarize news.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Roles of a chat message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// Usage reports token accounting when the backend returns it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the assistant reply to a message list.
type Completion struct {
	ID      string `json:"id,omitempty"`
	Model   string `json:"model"`
	Content string `json:"content"`
	Usage   *Usage `json:"usage,omitempty"`
}

// Completer generates a reply to a list of messages. An empty model uses the
// backend default.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (*Completion, error)
}

// ErrNothingToSummarize is returned when the input text is empty or only
// whitespace. The model is not called.
var ErrNothingToSummarize = errors.New("nothing to summarize")

// SummarizationError wraps a failed model call. The record being summarized
// is left unchanged.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed: %v", e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// Ask sends a single user prompt and returns the reply text.
func Ask(ctx context.Context, c Completer, model, prompt string) (string, error) {
	resp, err := c.Complete(ctx, model, []Message{{Role: RoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
