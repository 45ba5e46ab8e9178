package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	// defaultRetryAfter is assumed when a 429 carries no usable hint.
	defaultRetryAfter = 0
)

// Generator is the single-attempt generation contract. Implemented by
// Client; faked in tests.
type Generator interface {
	Generate(ctx context.Context, req *CompletionRequest) (string, error)
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client is the HTTP client for the external generation service. One call
// to Generate is exactly one upstream attempt; retry policy lives in the
// Retrier.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Generator = (*Client)(nil)

// NewClient creates a new generation service client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate issues one completion attempt and returns the completion text.
// Failures are classified into *UpstreamError: 429 is rate-limited (with
// the Retry-After hint when parseable), 5xx and network failures are
// transient, other 4xx are fatal, and a 2xx with an empty completion is
// treated as transient since the service produced no usable output.
func (c *Client) Generate(ctx context.Context, req *CompletionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("User-Agent", "listing-rewriter/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &UpstreamError{Class: ClassTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Class: ClassTransient, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp, respBody)
	}

	var result CompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &UpstreamError{Class: ClassTransient, Message: fmt.Sprintf("failed to unmarshal response: %v", err)}
	}

	text := result.Text()
	if text == "" {
		return "", &UpstreamError{Class: ClassTransient, Message: "empty completion"}
	}

	return text, nil
}

// Text returns the first choice's content, trimmed.
func (r *CompletionResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Choices[0].Message.Content)
}

func classifyStatus(resp *http.Response, body []byte) *UpstreamError {
	msg := parseErrorMessage(body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &UpstreamError{
			Class:      ClassRateLimited,
			StatusCode: resp.StatusCode,
			Message:    msg,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return &UpstreamError{Class: ClassTransient, StatusCode: resp.StatusCode, Message: msg}
	default:
		return &UpstreamError{Class: ClassFatal, StatusCode: resp.StatusCode, Message: msg}
	}
}

// parseRetryAfter handles the delay-seconds form of the header. The
// HTTP-date form is rare from this upstream and falls back to no hint.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
