// Package anthropic provides a multimodal inference client for the Anthropic
// Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.InferenceClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 32000
	DefaultTimeout   = 300 * time.Second

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"

	// maxResponseBytes bounds how much of a reply body is read.
	maxResponseBytes = 8 << 20

	// maxErrorMessage bounds the error text kept from a failed response.
	maxErrorMessage = 500
)

// Config holds configuration for the Anthropic client.
type Config struct {
	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use.
	Model string

	// MaxTokens bounds the reply length.
	MaxTokens int

	// Timeout is the per-request timeout (default: 300s).
	Timeout time.Duration

	// RequestsPerSecond paces requests. Zero disables pacing.
	RequestsPerSecond float64

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client sends assembled requests to /v1/messages.
// It makes one attempt per call and classifies failures for the caller.
type Client struct {
	client    *http.Client
	baseURL   string
	model     string
	maxTokens int
	limiter   *RateLimiter
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
	Messages  []messagesMessage `json:"messages"`
}

// messagesMessage is the Anthropic message format with block content.
type messagesMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// errorResponse is the body Anthropic returns for failed requests.
type errorResponse struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a new Anthropic client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.MaxTokens < 0 {
		return nil, fmt.Errorf("anthropic: max tokens must not be negative")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:    httpClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// NewClientFromSettings creates a client from stored LLM settings.
func NewClientFromSettings(s domain.LLMSettings) (*Client, error) {
	return NewClient(Config{
		BaseURL:           s.BaseURL,
		Model:             s.Model,
		MaxTokens:         s.MaxTokens,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
	})
}

// Complete sends the payload as a single user message and returns the
// concatenated text of the reply.
func (c *Client) Complete(ctx context.Context, apiKey string, payload *domain.RequestPayload) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	jsonBody, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    payload.System,
		Messages:  []messagesMessage{{Role: "user", Content: toContent(payload.Blocks)}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, apiKey)
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("anthropic: POST /v1/messages (%d bytes, model %s)", len(jsonBody), c.model)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &domain.ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.ConnectionError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimit(retryAfter(resp.Header, time.Now()))
			logger.Warn("anthropic: rate limited, holding requests until %s",
				c.limiter.RetryAt().Format(time.RFC3339))
		}
		return "", &domain.StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	logger.Debug("anthropic: %d input / %d output tokens, stop reason %q",
		msgResp.Usage.InputTokens, msgResp.Usage.OutputTokens, msgResp.StopReason)
	if msgResp.StopReason == "max_tokens" {
		logger.Warn("anthropic: reply truncated at %d tokens", c.maxTokens)
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == domain.BlockTypeText {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return "", errors.New("anthropic: no text content returned")
	}

	return result.String(), nil
}

// toContent maps domain blocks onto the wire format.
func toContent(blocks []domain.ContentBlock) []contentBlock {
	content := make([]contentBlock, len(blocks))
	for i, b := range blocks {
		if b.Type == domain.BlockTypeImage {
			content[i] = contentBlock{
				Type:   domain.BlockTypeImage,
				Source: &imageSource{Type: "base64", MediaType: b.MediaType, Data: b.Data},
			}
			continue
		}
		content[i] = contentBlock{Type: domain.BlockTypeText, Text: b.Text}
	}
	return content
}

// errorMessage extracts the error text from a failed response body.
func errorMessage(body []byte) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return errResp.Error.Type + ": " + errResp.Error.Message
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = strings.ToValidUTF8(msg[:maxErrorMessage], "")
	}
	return msg
}

func (c *Client) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

// ModelName returns the name of the model being used.
func (c *Client) ModelName() string {
	return c.model
}

// Ping validates the key by listing models, without running inference.
func (c *Client) Ping(ctx context.Context, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: create ping request: %w", err)
	}
	c.setHeaders(req, apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		status := &domain.StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
		if status.Unauthorized() {
			return &domain.AuthError{StatusCode: status.StatusCode, Message: status.Message}
		}
		return status
	}
	return nil
}
