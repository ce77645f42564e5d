// Package httpclient provides the single configured transport handle used
// for all outgoing API calls. It injects fixed headers, tags each request
// with an id, and logs requests, responses and failures. It never retries;
// retry policy belongs to the caller.
package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pharmacart/domain"
)

// DefaultTimeout bounds a single request round-trip.
const DefaultTimeout = 30 * time.Second

// Response is the raw outcome of a completed HTTP exchange. Non-2xx
// statuses are returned as responses, not errors; classification is the
// caller's job.
type Response struct {
	Status int
	Body   []byte
}

// Client wraps an *http.Client with the storefront's request conventions.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New constructs a Client for the given API base URL. The base URL is read
// once at startup and never changes afterwards.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     logger,
	}
}

// SetTimeout overrides the per-request deadline. Used by tests.
func (c *Client) SetTimeout(d time.Duration) {
	c.http.Timeout = d
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET for pathAndQuery relative to the base URL. Transport
// failures come back as typed timeout/network errors; any received HTTP
// response, success or not, is returned as a Response.
func (c *Client) Get(ctx context.Context, pathAndQuery string) (*Response, error) {
	url := c.baseURL + pathAndQuery
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewNetworkError(err.Error())
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ngrok-skip-browser-warning", "true")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	c.log.Info("request",
		"method", http.MethodGet,
		"url", url,
		"request_id", reqID,
		"timeout", c.http.Timeout.String(),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Error("request timed out", "url", url, "request_id", reqID, "error", err)
			return nil, domain.NewTimeoutError(err.Error())
		}
		c.log.Error("network error", "url", url, "request_id", reqID, "error", err)
		return nil, domain.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			c.log.Error("request timed out", "url", url, "request_id", reqID, "error", err)
			return nil, domain.NewTimeoutError(err.Error())
		}
		c.log.Error("network error", "url", url, "request_id", reqID, "error", err)
		return nil, domain.NewNetworkError(err.Error())
	}

	lat := time.Since(start)
	if resp.StatusCode >= 400 {
		// server responded with an error status; still a response
		c.log.Error("response error",
			"url", url,
			"request_id", reqID,
			"status", resp.StatusCode,
			"bytes", len(body),
			"latency_ms", lat.Milliseconds(),
		)
	} else {
		c.log.Info("response",
			"url", url,
			"request_id", reqID,
			"status", resp.StatusCode,
			"bytes", len(body),
			"latency_ms", lat.Milliseconds(),
		)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
