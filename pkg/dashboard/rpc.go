package dashboard

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

	"github.com/zeromicro/go-zero/core/logx"
)

const (
	// DefaultAttempts is the total number of tries per logical call.
	DefaultAttempts = 3
	// DefaultRetryDelay is the fixed wait between two tries.
	DefaultRetryDelay = 2000 * time.Millisecond

	maxResponseBytes = 8 << 20
)

// ErrExhaustedRetries is returned once every attempt of a call has failed.
// The error also wraps the last failure.
var ErrExhaustedRetries = errors.New("dashboard: generation request failed after retries")

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Prompt          string         `json:"prompt"`
	Schema          map[string]any `json:"schema"`
	UseGoogleSearch bool           `json:"useGoogleSearch"`
}

// Caller issues one logical generation request and returns the raw JSON
// payload.
type Caller interface {
	Call(ctx context.Context, req GenerateRequest) (json.RawMessage, error)
}

// RequestFailedError is a non-2xx answer from the generation endpoint.
type RequestFailedError struct {
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

// Permanent reports whether retrying the same request cannot help.
func (e *RequestFailedError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 &&
		e.StatusCode != http.StatusRequestTimeout &&
		e.StatusCode != http.StatusTooManyRequests
}

// RetryPolicy selects which failures are retried.
type RetryPolicy int

const (
	// RetryAll retries every failure, including permanent 4xx answers.
	RetryAll RetryPolicy = iota
	// RetryTransient stops at the first permanent 4xx answer.
	RetryTransient
)

func (p RetryPolicy) String() string {
	if p == RetryTransient {
		return "transient"
	}
	return "all"
}

// ParseRetryPolicy maps a config value to a policy. Empty means RetryAll.
func ParseRetryPolicy(s string) (RetryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return RetryAll, nil
	case "transient":
		return RetryTransient, nil
	default:
		return RetryAll, fmt.Errorf("dashboard: unknown retry policy %q", s)
	}
}

// Client calls the generation proxy over HTTP with a fixed retry budget.
type Client struct {
	endpoint   string
	httpClient *http.Client
	attempts   int
	delay      time.Duration
	policy     RetryPolicy
	sleep      func(ctx context.Context, d time.Duration) error
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAttempts sets the total number of tries. Values below one are ignored.
func WithAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithRetryDelay sets the wait between tries.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithRetryPolicy selects the retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithSleep replaces the wait between tries. Tests use it to observe delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// NewClient returns a Client posting to endpoint, the full URL of the
// generation proxy.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		attempts:   DefaultAttempts,
		delay:      DefaultRetryDelay,
		policy:     RetryAll,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call posts req and returns the JSON payload of the first successful try.
func (c *Client) Call(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		payload, err := c.post(ctx, req)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("dashboard: generation request aborted: %w", ctxErr)
		}
		var failed *RequestFailedError
		if c.policy == RetryTransient && errors.As(err, &failed) && failed.Permanent() {
			return nil, err
		}

		logx.WithContext(ctx).Errorf("generation proxy call failed, attempt %d/%d: %v", attempt, c.attempts, err)
		if attempt == c.attempts {
			break
		}
		if err := c.sleep(ctx, c.delay); err != nil {
			return nil, fmt.Errorf("dashboard: generation request aborted: %w", err)
		}
	}
	return nil, fmt.Errorf("%w (%d attempts): %w", ErrExhaustedRetries, c.attempts, lastErr)
}

func (c *Client) post(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read generate response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		msg := errBody.Error
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
		}
		return nil, &RequestFailedError{StatusCode: resp.StatusCode, Message: msg}
	}

	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return nil, errors.New("dashboard: generate response is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
