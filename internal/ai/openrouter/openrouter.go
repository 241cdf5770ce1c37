// Package openrouter talks to the OpenRouter chat completions API.
package openrouter

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/ai"
	"github.com/spigell/career-navigator/internal/metrics"
)

const (
	// Provider names this backend in config and logs.
	Provider = "openrouter"

	apiURL          = "https://openrouter.ai/api/v1"
	completionsPath = "/chat/completions"
	userAgent       = "spigell/career-navigator"
	defaultModel    = "meta-llama/llama-3.3-70b-instruct:free"

	contentType     = "application/json"
	contentEncoding = "gzip"

	defaultMaxResponseBytes = 4 << 20
)

var (
	// ErrBadStatus is returned for non-2xx responses.
	ErrBadStatus = errors.New("bad status")

	// ErrResponseTooLarge is returned when the decoded body exceeds MaxResponseBytes.
	ErrResponseTooLarge = errors.New("response too large")
)

type Client struct {
	token       string
	model       string
	temperature float32
	logger      *zap.Logger
	HTTPClient  *http.Client
	UserAgent   string
	APIURL      string

	// MaxResponseBytes caps the decoded response body.
	MaxResponseBytes int64
}

// Options configure a Client. Zero values pick defaults.
type Options struct {
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func New(logger *zap.Logger, token string, opts Options) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("openrouter api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		token:       token,
		model:       model,
		temperature: opts.Temperature,
		logger:      logger,
		HTTPClient:  &http.Client{Timeout: timeout},
		UserAgent:   userAgent,
		APIURL:      apiURL,

		MaxResponseBytes: defaultMaxResponseBytes,
	}, nil
}

// GenerateContent sends the prompt as a single user message and returns the
// content of the first choice.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	var response completionResponse
	if err := c.do(req, &response); err != nil {
		metrics.GenerateDuration.WithLabelValues(Provider, "error").Observe(time.Since(started).Seconds())
		return "", err
	}
	metrics.GenerateDuration.WithLabelValues(Provider, "ok").Observe(time.Since(started).Seconds())

	if response.Error != nil {
		return "", fmt.Errorf("openrouter error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openrouter: %w", ai.ErrEmptyResponse)
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openrouter: %w", ai.ErrEmptyResponse)
	}

	return text, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	limit := c.MaxResponseBytes
	if limit <= 0 {
		limit = defaultMaxResponseBytes
	}
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > limit {
		return fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Debug("openrouter request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(data, 512)),
		)
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	return json.Unmarshal(data, target)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()), zap.String("model", c.model))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("X-Title", "Career Navigator")

	return req
}

func truncate(data []byte, limit int) []byte {
	if len(data) <= limit {
		return data
	}
	return data[:limit]
}
