package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/khabar/internal/models"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  []Message
}

func (f *fakeCompleter) Complete(_ context.Context, model string, messages []Message) (*Completion, error) {
	f.calls++
	f.last = messages
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Model: model, Content: f.reply}, nil
}

type fakeStore struct {
	updates map[int64]string
	at      time.Time
}

func (s *fakeStore) UpdateSummary(_ context.Context, id int64, summary string, at time.Time) error {
	if s.updates == nil {
		s.updates = map[int64]string{}
	}
	s.updates[id] = summary
	s.at = at
	return nil
}

func strPtr(s string) *string { return &s }

func TestSummarizeRecordBuildsTextDescriptionFirst(t *testing.T) {
	c := &fakeCompleter{reply: "  A short\nsummary.  "}
	store := &fakeStore{}
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	s := NewSummarizer(c, store, "m", func() time.Time { return now })

	rec := &models.PersistedNews{ID: 7, Description: strPtr("Lead"), Content: strPtr("Body")}
	got, err := s.SummarizeRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("SummarizeRecord() error = %v", err)
	}
	if got != "A short summary." {
		t.Errorf("summary = %q", got)
	}
	if !strings.HasSuffix(c.last[1].Content, "Lead\n\nBody") {
		t.Errorf("prompt = %q, want description then content", c.last[1].Content)
	}
	if store.updates[7] != got || !store.at.Equal(now) {
		t.Errorf("store = %+v", store)
	}
	if !rec.IsSummarized || rec.Summary == nil || !rec.UpdatedAt.Equal(now) {
		t.Errorf("record not updated: %+v", rec)
	}
}

func TestSummarizeRecordNothingToSummarize(t *testing.T) {
	c := &fakeCompleter{reply: "x"}
	s := NewSummarizer(c, &fakeStore{}, "m", nil)

	_, err := s.SummarizeRecord(context.Background(), &models.PersistedNews{ID: 1, Description: strPtr("  "), Content: strPtr("\n\t")})
	if !errors.Is(err, ErrNothingToSummarize) {
		t.Errorf("error = %v, want ErrNothingToSummarize", err)
	}
	if c.calls != 0 {
		t.Errorf("model called %d times", c.calls)
	}
}

func TestSummarizeRecordAlreadySummarized(t *testing.T) {
	c := &fakeCompleter{reply: "new"}
	s := NewSummarizer(c, &fakeStore{}, "m", nil)

	got, err := s.SummarizeRecord(context.Background(), &models.PersistedNews{ID: 1, Summary: strPtr("old"), IsSummarized: true, Content: strPtr("body")})
	if err != nil || got != "old" {
		t.Errorf("SummarizeRecord() = %q, %v; want stored summary", got, err)
	}
	if c.calls != 0 {
		t.Error("model called for summarized record")
	}
}

func TestSummarizeRecordModelFailureLeavesRecord(t *testing.T) {
	c := &fakeCompleter{err: errors.New("503")}
	store := &fakeStore{}
	s := NewSummarizer(c, store, "m", nil)

	rec := &models.PersistedNews{ID: 3, Content: strPtr("body")}
	_, err := s.SummarizeRecord(context.Background(), rec)
	var se *SummarizationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SummarizationError", err)
	}
	if rec.IsSummarized || rec.Summary != nil || len(store.updates) != 0 {
		t.Error("record changed after failure")
	}
}

func TestSummarizeRecordEmptyOutputNotStored(t *testing.T) {
	c := &fakeCompleter{reply: " \n\t "}
	store := &fakeStore{}
	s := NewSummarizer(c, store, "m", nil)

	rec := &models.PersistedNews{ID: 4, Content: strPtr("body")}
	_, err := s.SummarizeRecord(context.Background(), rec)
	var se *SummarizationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SummarizationError", err)
	}
	if rec.IsSummarized || rec.Summary != nil || len(store.updates) != 0 {
		t.Error("empty summary was persisted")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"नेपालमा आज ठूलो वर्षा भयो":                     LanguageNepali,
		"Heavy rain in Kathmandu today":                  LanguageEnglish,
		"Kathmandu Metropolitan City announced काठमाडौं": LanguageEnglish,
		"": LanguageEnglish,
	}
	for in, want := range tests {
		if got := DetectLanguage(in); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanSummary(t *testing.T) {
	in := "```text\n\"Breaking:\x07 markets\n\n rally\"\n```"
	if got := CleanSummary(in); got != "Breaking: markets rally" {
		t.Errorf("CleanSummary() = %q", got)
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","model":"m1","choices":[{"message":{"role":"assistant","content":"hi"}}],"usage":{"total_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL+"/v1/", "tok", "default-model", 5*time.Second)
	resp, err := c.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "hello"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "hi" || resp.ID != "c1" || resp.Usage == nil || resp.Usage.TotalTokens != 5 {
		t.Errorf("resp = %+v", resp)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "default-model" || len(gotReq.Messages) != 1 {
		t.Errorf("request = %+v", gotReq)
	}
}

func TestOpenAIClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(srv.URL, "bad", "m", 5*time.Second).Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}})
	if err == nil || !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("error = %v", err)
	}
}

func TestGeminiClientComplete(t *testing.T) {
	var gotReq geminiRequest
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"namaste"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient("k", "gemini-pro", 5*time.Second).WithBaseURL(srv.URL)
	resp, err := g.Complete(context.Background(), "", BuildSummaryMessages("story"))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "namaste" {
		t.Errorf("Content = %q", resp.Content)
	}
	if gotPath != "/gemini-pro:generateContent" || gotKey != "k" {
		t.Errorf("path = %q key = %q", gotPath, gotKey)
	}
	if gotReq.SystemInstruction == nil || len(gotReq.Contents) != 1 || gotReq.Contents[0].Role != "user" {
		t.Errorf("request = %+v", gotReq)
	}
}
