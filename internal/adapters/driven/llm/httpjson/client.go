// Package httpjson is the JSON-over-HTTP client shared by the LLM adapters.
//
// A POST the provider rejected with 429 or a transient 5xx is retried with
// capped exponential backoff and full jitter; a Retry-After header takes
// precedence over the computed delay. Requests that got no response, such
// as client timeouts, are not retried: the provider may already have run
// and billed them.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/nomina/internal/logger"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 2048

// RetryPolicy bounds retries of a single request.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean 1.
	MaxAttempts int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy returns three attempts starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Second, MaxBackoff: 20 * time.Second}
}

// NoRetry makes a single attempt.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Header is sent with every request, e.g. authentication.
	Header http.Header

	Retry RetryPolicy
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Status     int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client sends JSON requests relative to a base URL.
type Client struct {
	http    *http.Client
	baseURL string
	header  http.Header
	retry   RetryPolicy
	sleep   func(context.Context, time.Duration) error
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		header:  cfg.Header.Clone(),
		retry:   cfg.Retry,
		sleep:   sleepCtx,
	}
}

// BaseURL returns the URL requests are relative to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post encodes in, sends it to path and decodes a 2xx reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = c.do(ctx, http.MethodPost, path, body, out)
		if err == nil || attempt >= c.retry.MaxAttempts || !retryable(ctx, err) {
			return err
		}
		wait := c.backoff(attempt, err)
		logger.Debug("httpjson: %s attempt %d failed (%v), retrying in %s", path, attempt, err, wait)
		if serr := c.sleep(ctx, wait); serr != nil {
			return err
		}
	}
}

// Get sends a single GET to path and decodes a 2xx reply into out, which
// may be nil to discard the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range c.header {
		req.Header[k] = vs
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Status:     resp.StatusCode,
			Body:       string(bytes.TrimSpace(raw)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	return errors.As(err, &se) && se.Temporary()
}

// backoff returns the delay before attempt+1.
func (c *Client) backoff(attempt int, err error) time.Duration {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > 0 {
		return min(se.RetryAfter, c.retry.MaxBackoff)
	}
	ceiling := c.retry.InitialBackoff << (attempt - 1)
	if ceiling <= 0 || ceiling > c.retry.MaxBackoff {
		ceiling = c.retry.MaxBackoff
	}
	if ceiling <= 0 {
		return 0
	}
	return rand.N(ceiling) + 1
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
