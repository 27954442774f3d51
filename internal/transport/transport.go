// Package transport implements the HTTP client for the adcraft backend:
// brief parsing and confirmation, product selection, long-running content
// generation (start + poll), the chat event stream, and conversation CRUD.
//
// The backend boundary is plain HTTP/JSON. Generation deliberately avoids a
// held-open streaming connection: proxies kill idle connections during
// multi-second agent calls, so the client starts a server-side task and
// polls its status instead (see Generate).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/adcraftlabs/adcraft/internal/log"
)

// Defaults for the generation poll loop. 120 attempts at 1s is a 2-minute
// ceiling; heartbeats fire every 5th running poll so the UI can show
// liveness without re-rendering every second.
const (
	DefaultPollInterval  = time.Second
	DefaultPollAttempts  = 120
	heartbeatEveryNPolls = 5
)

// DefaultRequestTimeout bounds individual request/response calls. The
// generation poll loop and chat stream manage their own deadlines via
// context, not the http.Client timeout.
const DefaultRequestTimeout = 30 * time.Second

// requestsPerSecond paces outbound calls. The poll loop runs at 1 Hz, so a
// 10 rps budget only guards against pathological retry storms.
const requestsPerSecond = 10

// Client issues requests to the adcraft backend.
// The zero value is not usable; use New.
type Client struct {
	baseURL      string
	userID       string
	httpClient   *http.Client
	streamClient *http.Client // no overall timeout; streams outlive DefaultRequestTimeout
	limiter      *rate.Limiter
	logger       log.Logger

	pollInterval time.Duration
	pollAttempts int
	retry        retryConfig
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client for request/response
// calls. Mostly used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval overrides the generation status poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithPollAttempts overrides the generation poll attempt ceiling.
func WithPollAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pollAttempts = n
		}
	}
}

// New creates a Client for the backend at baseURL. userID identifies the
// caller on every request per the backend contract.
func New(baseURL, userID string, logger log.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("transport.New: base URL is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("transport.New: user ID is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		userID:       userID,
		httpClient:   &http.Client{Timeout: DefaultRequestTimeout},
		streamClient: &http.Client{},
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:       logger.With("component", "transport"),
		pollInterval: DefaultPollInterval,
		pollAttempts: DefaultPollAttempts,
		retry:        defaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// doJSON performs one request/response call: rate-limit wait, send JSON
// body (if any), decode JSON response into out (if non-nil). Non-2xx
// responses become *RequestError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRequestError(method, path, resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
