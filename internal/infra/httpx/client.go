package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"contract-chat-mapping/internal/metrics"
)

// Response is the outcome of one transport call after retries.
type Response struct {
	Status  int
	Body    []byte
	Retries int
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Retryable reports whether an HTTP status should be retried at the
// transport level: rate limiting, server errors and connection
// failures. Auth and business failures are never retried here.
func Retryable(status int) bool {
	return status == StatusConnFailed || status == http.StatusTooManyRequests || status >= 500
}

// Client issues outbound HTTP calls through the shared rate limiter
// and retryer. The timeout applies per attempt, not per retry sequence.
type Client struct {
	http    *http.Client
	limiter *RateLimiter
	retryer *Retryer
	log     *slog.Logger
}

// NewClient builds a transport with a fixed per-attempt timeout.
func NewClient(timeout time.Duration, limiter *RateLimiter, retryer *Retryer, log *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		retryer: retryer,
		log:     log,
	}
}

// Retryer exposes the shared retryer so stage clients can reuse its
// policy for business-level backoff.
func (c *Client) Retryer() *Retryer { return c.retryer }

// Get issues a GET with query parameters against the named resource
// bucket.
func (c *Client) Get(ctx context.Context, resource, rawURL string, headers map[string]string, query url.Values) (*Response, error) {
	return c.do(ctx, resource, http.MethodGet, rawURL, headers, nil, query)
}

// PostJSON issues a POST with a JSON body against the named resource
// bucket.
func (c *Client) PostJSON(ctx context.Context, resource, rawURL string, headers map[string]string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return c.do(ctx, resource, http.MethodPost, rawURL, headers, payload, nil)
}

func (c *Client) do(ctx context.Context, resource, method, rawURL string, headers map[string]string, body []byte, query url.Values) (*Response, error) {
	start := time.Now()

	attempt := func(ctx context.Context) (int, []byte) {
		// Pacing happens inside the retried call so backoff sleeps do
		// not consume rate-limit slots.
		if err := c.limiter.Acquire(ctx, "global"); err != nil {
			return StatusConnFailed, nil
		}
		if resource != "" {
			if err := c.limiter.Acquire(ctx, resource); err != nil {
				return StatusConnFailed, nil
			}
		}

		target := rawURL
		if len(query) > 0 {
			target = rawURL + "?" + query.Encode()
		}
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return StatusConnFailed, nil
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		metrics.RequestsTotal.WithLabelValues(resource).Inc()
		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Debug("request failed", "resource", resource, "method", method, "error", err)
			return StatusConnFailed, nil
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return StatusConnFailed, nil
		}
		return resp.StatusCode, data
	}

	status, data, retries := c.retryer.Run(ctx, attempt, Retryable)

	metrics.RequestDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	if retries > 0 {
		metrics.RetriesTotal.WithLabelValues(resource).Add(float64(retries))
		c.log.Debug("request retried", "resource", resource, "status", status, "retries", retries)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Response{Status: status, Body: data, Retries: retries}, nil
}
