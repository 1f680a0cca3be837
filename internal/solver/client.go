// Package solver talks to the remote service that recognises and evaluates
// handwritten expressions.
package solver

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
)

// maxResponseBody caps how much of a solver reply is read (10 MiB).
const maxResponseBody int64 = 10 << 20

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// StatusError is returned when the solver answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("solver: status %d: %s", e.Code, e.Body)
}

// Client posts canvas snapshots to a solver endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	retries  int
	backoff  time.Duration
	logger   *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRetry retries failed calls up to n times, doubling the wait from
// backoff after each attempt.
func WithRetry(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

// WithLogger sets the logger used for retry and failure records.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a client for the solver rooted at baseURL. Requests go to
// baseURL + "/calculate".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/calculate",
		http:     &http.Client{Timeout: DefaultTimeout},
		backoff:  500 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Endpoint returns the full calculate URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Solve submits req and decodes the reply, retrying as configured.
func (c *Client) Solve(ctx context.Context, req Request) (*Response, error) {
	if req.Vars == nil {
		req.Vars = map[string]string{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("solver: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		resp, err := c.post(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == c.retries {
			break
		}
		// A rejected request will be rejected again.
		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			break
		}
		wait := c.backoff * (1 << uint(attempt))
		c.logger.WarnContext(ctx, "retrying solver call",
			"attempt", attempt+1,
			"max_retries", c.retries,
			"backoff_ms", wait.Milliseconds(),
			"error", err)
		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, payload []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("solver: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("solver: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("solver: read response: %w", err)
	}
	if int64(len(body)) > maxResponseBody {
		return nil, fmt.Errorf("solver: response exceeds %d bytes", maxResponseBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("solver: decode response: %w", err)
	}
	return &out, nil
}
