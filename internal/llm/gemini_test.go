package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

func modelReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestGenerateQuestion(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		modelReply(t, w, "  Tell me about the migration you led.  ")
	}))
	defer srv.Close()

	g := NewGemini("test-key", WithBaseURL(srv.URL), WithModel("gemini-test"))
	got, err := g.GenerateQuestion(context.Background(), nil, "resume text", "job text")
	if err != nil {
		t.Fatalf("GenerateQuestion: %v", err)
	}

	if got != "Tell me about the migration you led." {
		t.Errorf("question = %q", got)
	}
	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	if !strings.Contains(gotBody.Contents[0].Parts[0].Text, "resume text") {
		t.Error("prompt does not include the resume")
	}
}

func TestGenerateQuestionUsesHistory(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		modelReply(t, w, "Why did you pick Kafka over a plain queue?")
	}))
	defer srv.Close()

	g := NewGemini("k", WithBaseURL(srv.URL))
	history := []domain.QA{{Question: "What was the hardest bug?", Answer: "A data race."}}
	if _, err := g.GenerateQuestion(context.Background(), history, "resume", "job"); err != nil {
		t.Fatalf("GenerateQuestion: %v", err)
	}

	if !strings.Contains(prompt, "What was the hardest bug?") {
		t.Error("prompt does not carry previous questions")
	}
	if !strings.Contains(prompt, "job") {
		t.Error("prompt does not carry the job description")
	}
}

func TestEvaluateAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelReply(t, w, "```json\n{\"technical_accuracy\": 8, \"clarity\": 7, \"depth\": 9, \"completeness\": 6, \"improvement_tip\": \"Mention tradeoffs.\", \"positive_note\": \"Great structure.\"}\n```")
	}))
	defer srv.Close()

	g := NewGemini("k", WithBaseURL(srv.URL))
	got, err := g.EvaluateAnswer(context.Background(), "Why Go?", "Because of goroutines.")
	if err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}

	want := domain.Scorecard{
		Technical:      8,
		Clarity:        7,
		Depth:          9,
		Completeness:   6,
		ImprovementTip: "Mention tradeoffs.",
		PositiveNote:   "Great structure.",
	}
	if got != want {
		t.Errorf("scorecard = %+v, want %+v", got, want)
	}
}

func TestEvaluateAnswerUnparseableFallsBackToNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelReply(t, w, "I would rate this answer quite highly overall.")
	}))
	defer srv.Close()

	g := NewGemini("k", WithBaseURL(srv.URL))
	got, err := g.EvaluateAnswer(context.Background(), "q", "a")
	if err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}
	if got.Technical != 5 || got.Clarity != 5 || got.Depth != 5 || got.Completeness != 5 {
		t.Errorf("scorecard = %+v, want neutral fives", got)
	}
}

func TestGenerateReport(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		modelReply(t, w, "Overall a strong showing with room to grow on depth.")
	}))
	defer srv.Close()

	g := NewGemini("k", WithBaseURL(srv.URL))
	history := []domain.QA{{Question: "Why Go?", Answer: "Because of goroutines."}}
	cards := []domain.Scorecard{{Technical: 8, Clarity: 7, Depth: 6, Completeness: 9}}

	got, err := g.GenerateReport(context.Background(), history, cards)
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if got != "Overall a strong showing with room to grow on depth." {
		t.Errorf("report = %q", got)
	}
	if !strings.Contains(prompt, "Q1: Why Go?") || !strings.Contains(prompt, "A1: Because of goroutines.") {
		t.Error("prompt does not carry the transcript")
	}
	if !strings.Contains(prompt, "Tech=8, Clarity=7, Depth=6, Completeness=9") {
		t.Error("prompt does not carry the evaluation points")
	}
}

func TestGenerateRetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
			return
		}
		modelReply(t, w, "Recovered question?")
	}))
	defer srv.Close()

	g := NewGemini("k", WithBaseURL(srv.URL))
	g.retryDelay = time.Millisecond
	got, err := g.GenerateQuestion(context.Background(), nil, "resume", "job")
	if err != nil {
		t.Fatalf("GenerateQuestion: %v", err)
	}
	if got != "Recovered question?" {
		t.Errorf("question = %q", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"code": 400, "message": "invalid argument", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	g := NewGemini("k", WithBaseURL(srv.URL))
	if _, err := g.GenerateQuestion(context.Background(), nil, "resume", "job"); err == nil {
		t.Fatal("expected error on 400 response")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"no object", "nothing here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
