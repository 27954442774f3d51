package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrGenerationTimeout indicates the generation poll loop exhausted its
// attempt ceiling without the task reaching a terminal status. The server
// task may still be running; there is no server-side cancel call.
var ErrGenerationTimeout = errors.New("generation timed out after 2 minutes")

// maxErrorBodyBytes bounds how much of an error response body is captured
// into a RequestError.
const maxErrorBodyBytes = 4096

// RequestError is returned for any non-2xx HTTP response.
// Check with errors.As:
//
//	var reqErr *transport.RequestError
//	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound { ... }
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// newRequestError captures the status and a bounded slice of the body.
func newRequestError(method, path string, resp *http.Response) *RequestError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &RequestError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// GenerationError is returned when the backend reports a generation task as
// failed. Message carries the server-supplied error text when available.
type GenerationError struct {
	TaskID  string
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation task %s failed", e.TaskID)
	}
	return fmt.Sprintf("generation task %s failed: %s", e.TaskID, e.Message)
}
