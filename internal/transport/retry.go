package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// retryConfig configures the retry behavior for idempotent read requests.
// Writes (brief confirmation, deletes, generation start) are never retried
// here; the caller decides how to recover those.
type retryConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
	}
}

// retryableStatus holds the HTTP status codes worth retrying.
var retryableStatus = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// retryableError reports whether err is transient and should trigger a retry.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus[reqErr.StatusCode]
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// getJSON performs an idempotent GET with exponential backoff retry.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error
	delay := c.retry.initialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retry.maxRetries; attempt++ {
		err := c.doJSON(ctx, "GET", path, query, nil, out)
		if err == nil {
			if attempt > 0 {
				c.logger.Debug("request succeeded after retry",
					"path", path,
					"attempts", attempt+1,
					"elapsed", time.Since(start))
			}
			return nil
		}

		lastErr = err

		if !retryableError(err) {
			return err
		}
		if attempt == c.retry.maxRetries {
			break
		}

		c.logger.Debug("retrying after transient error",
			"path", path,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, c.retry.maxInterval)
		}
	}

	return fmt.Errorf("GET %s after %d retries (elapsed: %v): %w",
		path, c.retry.maxRetries, time.Since(start), lastErr)
}
