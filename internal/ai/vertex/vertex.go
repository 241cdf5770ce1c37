// Package vertex generates recommendations with Gemini models hosted on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/metrics"
)

const (
	// Provider names this backend in config and logs.
	Provider = "vertex"

	defaultModel    = "gemini-1.5-flash"
	defaultLocation = "us-central1"
	maxOutputTokens = 2048
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Options configure a Generator.
type Options struct {
	ProjectID   string
	Location    string
	Model       string
	Temperature float32
}

// Generator sends prompts to a Vertex AI generative model.
type Generator struct {
	client    *genai.Client
	model     contentGenerator
	modelName string
}

// NewGenerator creates a Vertex AI client using application default credentials.
func NewGenerator(ctx context.Context, opts Options) (*Generator, error) {
	projectID := strings.TrimSpace(opts.ProjectID)
	if projectID == "" {
		return nil, errors.New("vertex project id is required")
	}

	location := strings.TrimSpace(opts.Location)
	if location == "" {
		location = defaultLocation
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("create vertex ai client: %w", err)
	}

	name := strings.TrimSpace(opts.Model)
	if name == "" {
		name = defaultModel
	}

	model := client.GenerativeModel(name)
	if opts.Temperature > 0 {
		model.SetTemperature(opts.Temperature)
	}
	model.SetMaxOutputTokens(maxOutputTokens)

	return &Generator{client: client, model: model, modelName: name}, nil
}

// GenerateContent returns the concatenated text parts of the first candidate.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.model == nil {
		return "", errors.New("vertex generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	started := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		metrics.GenerateDuration.WithLabelValues(Provider, "error").Observe(time.Since(started).Seconds())
		return "", fmt.Errorf("generate content: %w", err)
	}
	metrics.GenerateDuration.WithLabelValues(Provider, "ok").Observe(time.Since(started).Seconds())

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("vertex: %w", ai.ErrEmptyResponse)
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", fmt.Errorf("vertex: %w", ai.ErrEmptyResponse)
	}
	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
