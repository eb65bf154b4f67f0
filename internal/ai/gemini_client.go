package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		client:  resty.New().SetTimeout(timeout),
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
	}
}

// WithBaseURL points the client at another endpoint.
func (g *GeminiClient) WithBaseURL(url string) *GeminiClient {
	g.baseURL = strings.TrimRight(url, "/")
	return g
}

func (g *GeminiClient) Complete(ctx context.Context, model string, messages []Message) (*Completion, error) {
	if model == "" {
		model = g.model
	}

	text, usage, err := g.callGeminiAPI(ctx, model, buildGeminiRequest(messages))
	if err != nil {
		return nil, fmt.Errorf("error calling Gemini API: %w", err)
	}
	return &Completion{Model: model, Content: text, Usage: usage}, nil
}

// buildGeminiRequest moves system messages into the system instruction and
// maps the assistant role to Gemini's "model".
func buildGeminiRequest(messages []Message) geminiRequest {
	var req geminiRequest
	var system []geminiPart
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, geminiPart{Text: m.Content})
		case RoleAssistant:
			req.Contents = append(req.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			req.Contents = append(req.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{Parts: system}
	}
	return req
}

func (g *GeminiClient) callGeminiAPI(ctx context.Context, model string, req geminiRequest) (string, *Usage, error) {
	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)

	var resp geminiResponse
	r, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", g.apiKey).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(url)

	if err != nil {
		return "", nil, fmt.Errorf("API request failed: %w", err)
	}

	if resp.Error != nil {
		return "", nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if r.IsError() {
		return "", nil, fmt.Errorf("API error: status %d", r.StatusCode())
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("no content in response")
	}

	var usage *Usage
	if resp.UsageMetadata != nil {
		usage = &Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return resp.Candidates[0].Content.Parts[0].Text, usage, nil
}
