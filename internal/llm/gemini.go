// Package llm implements the interview content service on top of the
// Google Gemini REST API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel balances quality against per-question latency.
	DefaultModel = "gemini-2.5-flash-lite"

	defaultMaxOutputTokens = 1024
	defaultTemperature     = 0.7

	maxAttempts    = 3
	retryBaseDelay = 2 * time.Second
)

// ErrEmptyResponse means the model returned no usable text.
var ErrEmptyResponse = errors.New("empty response from model")

// Gemini generates interview questions and scores answers.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

// Option configures a Gemini client.
type Option func(*Gemini)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(g *Gemini) { g.baseURL = strings.TrimRight(url, "/") }
}

// WithModel selects a specific model.
func WithModel(model string) Option {
	return func(g *Gemini) { g.model = model }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gemini) { g.httpClient = c }
}

// NewGemini creates a Gemini-backed content service.
func NewGemini(apiKey string, opts ...Option) *Gemini {
	g := &Gemini{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryDelay: retryBaseDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateQuestion produces the next interview question. An empty history
// yields the resume-anchored opening question.
func (g *Gemini) GenerateQuestion(ctx context.Context, history []domain.QA, resumeText, jobDescription string) (string, error) {
	var prompt string
	if len(history) == 0 {
		prompt = openingPrompt(resumeText)
	} else {
		prompt = questionPrompt(history, resumeText, jobDescription)
	}

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}
	return text, nil
}

// EvaluateAnswer scores the content of one answer. A response the model
// mangled beyond JSON recovery degrades to a neutral scorecard rather
// than failing the turn.
func (g *Gemini) EvaluateAnswer(ctx context.Context, question, transcript string) (domain.Scorecard, error) {
	text, err := g.generate(ctx, evaluationPrompt(question, transcript))
	if err != nil {
		return domain.Scorecard{}, fmt.Errorf("evaluate answer: %w", err)
	}

	scorecard, err := parseScorecard(text)
	if err != nil {
		slog.Warn("Failed to parse evaluation, using neutral scorecard", "error", err)
		return neutralScorecard(), nil
	}
	return scorecard, nil
}

// GenerateReport produces the narrative closing assessment for a
// finished interview.
func (g *Gemini) GenerateReport(ctx context.Context, history []domain.QA, scorecards []domain.Scorecard) (string, error) {
	text, err := g.generate(ctx, reportPrompt(history, scorecards))
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	return text, nil
}

// Gemini API request/response format. The API uses camelCase field names.
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate calls the model once per attempt, retrying with exponential
// backoff on rate-limit and overload responses.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.retryDelay * time.Duration(1<<(attempt-1))
			slog.Debug("Retrying model call", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, retryable, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", maxAttempts, lastErr)
}

func (g *Gemini) generateOnce(ctx context.Context, prompt string) (text string, retryable bool, err error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenConfig{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxOutputTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("call model endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("read model response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiError
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, msg)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("decode model response: %w", err)
	}

	var b strings.Builder
	for _, c := range parsed.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		break
	}
	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", false, ErrEmptyResponse
	}
	return text, false, nil
}

// parseScorecard extracts the evaluation JSON object from the model's
// text, tolerating code fences and surrounding prose.
func parseScorecard(text string) (domain.Scorecard, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return domain.Scorecard{}, fmt.Errorf("no JSON object in response")
	}

	var scorecard domain.Scorecard
	if err := json.Unmarshal([]byte(raw), &scorecard); err != nil {
		return domain.Scorecard{}, fmt.Errorf("unmarshal scorecard: %w", err)
	}

	scorecard.Technical = clampScore(scorecard.Technical)
	scorecard.Clarity = clampScore(scorecard.Clarity)
	scorecard.Depth = clampScore(scorecard.Depth)
	scorecard.Completeness = clampScore(scorecard.Completeness)
	return scorecard, nil
}

func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func neutralScorecard() domain.Scorecard {
	return domain.Scorecard{
		Technical:      5,
		Clarity:        5,
		Depth:          5,
		Completeness:   5,
		ImprovementTip: "Unable to evaluate - please continue.",
		PositiveNote:   "Keep going!",
	}
}
