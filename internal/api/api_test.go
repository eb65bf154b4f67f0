package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
	"github.com/gofiber/fiber/v2"
)

const adminKey = "admin-secret"

type staticSource struct {
	name  string
	items []models.NewsItem
	err   error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Fetch(context.Context) ([]models.NewsItem, error) {
	return append([]models.NewsItem(nil), s.items...), s.err
}

type echoCompleter struct{ fail bool }

func (e echoCompleter) Complete(_ context.Context, model string, msgs []ai.Message) (*ai.Completion, error) {
	if e.fail {
		return nil, errors.New("upstream down")
	}
	return &ai.Completion{Model: model, Content: "summary of " + model}, nil
}

type testEnv struct {
	app   *fiber.App
	store *storage.Store
}

func newTestEnv(t *testing.T, completer ai.Completer) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	reg := feed.NewRegistry()
	reg.Register(feed.SelectorEnglish, staticSource{name: "en", items: []models.NewsItem{
		{Title: "Old", Link: "https://x/old", PubDate: "Mon, 01 Jan 2024 10:00:00 +0000", Content: "old body"},
		{Title: "New", Link: "https://x/new", PubDate: "Tue, 02 Jan 2024 10:00:00 +0000", Content: "new body"},
	}})
	reg.Register(feed.SelectorNepali, staticSource{name: "np", err: errors.New("down")})
	reg.Register(feed.SelectorTech, staticSource{name: "tech", items: []models.NewsItem{
		{Title: "Chip", Link: "https://x/chip", Description: "Chip", Content: "A new chip"},
	}})

	agg := feed.NewAggregator(reg, cache.NewMemory(time.Hour, nil))
	gate := storage.NewGate(store, nil)

	var summarizer *ai.Summarizer
	if completer != nil {
		summarizer = ai.NewSummarizer(completer, store, "test-model", nil)
	}
	proc := feed.NewProcessor(agg, cache.NewMemory(time.Minute, nil), gate, store)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(app, NewHandlers(Deps{
		Aggregator: agg,
		Processor:  proc,
		Store:      store,
		Summarizer: summarizer,
		Completer:  completer,
		Model:      "test-model",
	}), adminKey)

	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string, admin bool) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("X-API-Key", adminKey)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestGetNews(t *testing.T) {
	env := newTestEnv(t, nil)

	code, body := env.do(t, "GET", "/api/v1/news?language=en", "", false)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", code, body)
	}
	data := body["data"].([]interface{})
	if len(data) != 2 || data[0].(map[string]interface{})["title"] != "New" {
		t.Errorf("data = %v, want newest first", data)
	}

	if code, _ := env.do(t, "GET", "/api/v1/news?language=", "", false); code != http.StatusOK {
		t.Errorf("empty language status = %d, want 200 (defaults to en)", code)
	}
	if code, _ := env.do(t, "GET", "/api/v1/news?language=np", "", false); code != http.StatusNotFound {
		t.Errorf("empty np status = %d, want 404", code)
	}
	if code, _ := env.do(t, "GET", "/api/v1/news?language=fr", "", false); code != http.StatusBadRequest {
		t.Errorf("unknown language status = %d, want 400", code)
	}
	if code, _ := env.do(t, "GET", "/api/v1/news/tech", "", false); code != http.StatusOK {
		t.Errorf("live tech status = %d", code)
	}
}

func TestProcessRequiresAdminKey(t *testing.T) {
	env := newTestEnv(t, nil)

	if code, _ := env.do(t, "POST", "/api/v1/tech-news/process-sync", "", false); code != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", code)
	}

	code, body := env.do(t, "POST", "/api/v1/tech-news/process-sync", "", true)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", code, body)
	}
	result := body["data"].([]interface{})[0].(map[string]interface{})
	if result["saved"].(float64) != 1 || result["total_in_database"].(float64) != 1 {
		t.Errorf("result = %v", result)
	}

	code, body = env.do(t, "POST", "/api/v1/tech-news/process-sync", "", true)
	result = body["data"].([]interface{})[0].(map[string]interface{})
	if code != http.StatusOK || result["saved"].(float64) != 0 {
		t.Errorf("second run = %d %v, want nothing new", code, result)
	}
}

func TestStoredRecordsLifecycle(t *testing.T) {
	env := newTestEnv(t, echoCompleter{})
	env.do(t, "POST", "/api/v1/nepali-news/process-sync", "", true)

	code, body := env.do(t, "GET", "/api/v1/nepali-news?limit=1", "", false)
	if code != http.StatusOK || body["total"].(float64) != 2 || len(body["data"].([]interface{})) != 1 {
		t.Fatalf("list = %d %v", code, body)
	}
	if code, _ := env.do(t, "GET", "/api/v1/nepali-news?limit=0", "", false); code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, want 400", code)
	}

	code, body = env.do(t, "GET", "/api/v1/nepali-news?language=np", "", false)
	if code != http.StatusOK || body["total"].(float64) != 0 {
		t.Errorf("np filter = %d %v", code, body)
	}

	list, _ := env.store.List(context.Background(), storage.ListFilter{Tags: []string{models.TagNepaliEn}, Limit: 1})
	path := "/api/v1/nepali-news/" + itoa(list[0].ID)

	if code, _ := env.do(t, "GET", "/api/v1/tech-news/"+itoa(list[0].ID), "", false); code != http.StatusNotFound {
		t.Errorf("record from other category status = %d, want 404", code)
	}
	if code, _ := env.do(t, "GET", path, "", false); code != http.StatusOK {
		t.Errorf("get status = %d", code)
	}

	code, body = env.do(t, "POST", "/api/v1/nepali-news/summarize/"+itoa(list[0].ID), "", false)
	if code != http.StatusOK {
		t.Fatalf("summarize status = %d %v", code, body)
	}
	rec := body["data"].(map[string]interface{})
	if rec["is_summarized"] != true || rec["summary"] != "summary of test-model" {
		t.Errorf("summarized record = %v", rec)
	}

	code, body = env.do(t, "GET", "/api/v1/nepali-news/stats", "", false)
	stats := body["data"].(map[string]interface{})
	if code != http.StatusOK || stats["total_news"].(float64) != 2 || stats["summarized_news"].(float64) != 1 {
		t.Errorf("stats = %d %v", code, stats)
	}

	if code, _ := env.do(t, "DELETE", path, "", false); code != http.StatusUnauthorized {
		t.Errorf("delete without key status = %d", code)
	}
	if code, _ := env.do(t, "DELETE", path, "", true); code != http.StatusOK {
		t.Errorf("delete status = %d", code)
	}
	if code, _ := env.do(t, "GET", path, "", false); code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", code)
	}
	if code, _ := env.do(t, "GET", "/api/v1/nepali-news/abc", "", false); code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", code)
	}
}

func TestAIEndpoints(t *testing.T) {
	env := newTestEnv(t, echoCompleter{})

	code, body := env.do(t, "POST", "/api/v1/ai/summarize", `{"news_content":"नेपालमा आज ठूलो वर्षा भयो"}`, false)
	if code != http.StatusOK {
		t.Fatalf("summarize status = %d %v", code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["detected_language"] != ai.LanguageNepali || data["model"] != "test-model" {
		t.Errorf("data = %v", data)
	}

	if code, _ := env.do(t, "GET", "/api/v1/ai/summarize?news_content=%20%20", "", false); code != http.StatusBadRequest {
		t.Errorf("blank content status = %d, want 400", code)
	}
	if code, _ := env.do(t, "GET", "/api/v1/ai/ask", "", false); code != http.StatusBadRequest {
		t.Errorf("ask without q status = %d, want 400", code)
	}
	if code, _ := env.do(t, "GET", "/api/v1/ai/ask?q=hello&model=other", "", false); code != http.StatusOK {
		t.Errorf("ask status = %d", code)
	}
	if code, _ := env.do(t, "POST", "/api/v1/ai/chat", `{"messages":[{"role":"user","content":"hi"}]}`, false); code != http.StatusOK {
		t.Errorf("chat status = %d", code)
	}
	if code, _ := env.do(t, "POST", "/api/v1/ai/chat", `{"messages":[{"role":"robot","content":"hi"}]}`, false); code != http.StatusBadRequest {
		t.Errorf("chat with bad role status = %d, want 400", code)
	}
}

func TestAIUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, echoCompleter{fail: true})
	if code, _ := env.do(t, "POST", "/api/v1/ai/summarize", `{"news_content":"story"}`, false); code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", code)
	}
}

func TestAIWithoutLLM(t *testing.T) {
	env := newTestEnv(t, nil)
	if code, _ := env.do(t, "GET", "/api/v1/ai/ask?q=hi", "", false); code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
