package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/spigell/career-navigator/internal/ai"
)

type fakeModels struct {
	responses []fakeResponse
	calls     int
	models    []string
	configs   []*genai.GenerateContentConfig
	prompts   []string
}

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.models = append(f.models, model)
	f.configs = append(f.configs, config)
	for _, content := range contents {
		for _, part := range content.Parts {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	if len(f.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.resp, next.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func newTestGenerator(models contentModels, opts Options) (*Generator, *[]time.Duration) {
	g := newGenerator(models, opts)
	var waits []time.Duration
	g.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return g, &waits
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}},
		{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}},
		{resp: textResponse("[]")},
	}}
	g, waits := newTestGenerator(models, Options{Model: "gemini-pro"})

	got, err := g.GenerateContent(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[]" {
		t.Fatalf("unexpected output %q", got)
	}
	if models.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", models.calls)
	}
	if len(*waits) != 2 || (*waits)[0] != time.Second || (*waits)[1] != 2*time.Second {
		t.Fatalf("unexpected backoff delays: %v", *waits)
	}
	for _, m := range models.models {
		if m != "gemini-pro" {
			t.Fatalf("unexpected model %q", m)
		}
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{
		{err: genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}},
	}}
	g, waits := newTestGenerator(models, Options{})

	_, err := g.GenerateContent(context.Background(), "prompt")
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
	if models.calls != 1 || len(*waits) != 0 {
		t.Fatalf("expected a single attempt, got %d calls", models.calls)
	}
}

func TestGeneratorGivesUpAfterRetries(t *testing.T) {
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable}
	models := &fakeModels{responses: []fakeResponse{{err: tempErr}, {err: tempErr}}}
	g, _ := newTestGenerator(models, Options{Retries: 1})

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error")
	}
	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}
}

func TestGeneratorStopsWhenContextDone(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{{err: genai.APIError{Code: http.StatusInternalServerError}}}}
	g := newGenerator(models, Options{})
	g.wait = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := g.GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestGeneratorJoinsTextParts(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{{resp: textResponse(" [ ", "", "]")}}}
	g, _ := newTestGenerator(models, Options{Temperature: 0.7})

	got, err := g.GenerateContent(context.Background(), "  prompt  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "[\n]" {
		t.Fatalf("unexpected output %q", got)
	}
	if models.prompts[0] != "prompt" {
		t.Fatalf("prompt must be trimmed, got %q", models.prompts[0])
	}

	cfg := models.configs[0]
	if cfg == nil || cfg.Temperature == nil || *cfg.Temperature != 0.7 {
		t.Fatalf("expected temperature in config, got %+v", cfg)
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	models := &fakeModels{responses: []fakeResponse{{resp: &genai.GenerateContentResponse{}}}}
	g, _ := newTestGenerator(models, Options{})

	_, err := g.GenerateContent(context.Background(), "prompt")
	if !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestGeneratorValidatesInput(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", Options{}); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}

	g, _ := newTestGenerator(&fakeModels{}, Options{})
	if _, err := g.GenerateContent(context.Background(), " "); err == nil {
		t.Fatalf("expected empty prompt error")
	}
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}

	var nilGen *Generator
	if _, err := nilGen.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for nil generator")
	}
}
