package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/adcraftlabs/adcraft/internal/content"
)

// doneSentinel terminates the chat event stream.
const doneSentinel = "[DONE]"

// streamReadSize is the network read granularity for the SSE reader.
const streamReadSize = 4096

// ChatEvent is a discriminated union for chat stream events.
// Exactly one field is set; Err is terminal. Channel closure without an
// Err means the stream completed normally via the [DONE] sentinel.
type ChatEvent struct {
	Response *content.AgentResponse
	Err      error
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id"`
}

// StreamChat opens the chat event stream and returns a channel of decoded
// agent responses. Frames arrive as "data: <json>\n\n" blocks; a frame
// split across network reads is buffered until its terminating blank line
// arrives. Malformed frames are logged and dropped; the stream continues.
//
// The reader goroutine exits when the sentinel arrives, the server closes
// the stream, or ctx is canceled.
func (c *Client) StreamChat(ctx context.Context, message, conversationID string) (<-chan ChatEvent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Message:        message,
		ConversationID: conversationID,
		UserID:         c.userID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST /api/chat: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newRequestError(http.MethodPost, "/api/chat", resp)
	}

	events := make(chan ChatEvent, eventBufferSize)
	go c.readStream(ctx, resp.Body, events)
	return events, nil
}

// readStream decodes SSE frames from r until the sentinel, EOF, or cancel.
func (c *Client) readStream(ctx context.Context, r io.ReadCloser, events chan<- ChatEvent) {
	defer close(events)
	defer r.Close()

	var pending string // held-back partial frame spanning reads
	buf := make([]byte, streamReadSize)

	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			var frames []string
			frames, pending = splitFrames(pending + string(buf[:n]))

			for _, frame := range frames {
				done, ev := c.decodeFrame(frame)
				if done {
					return
				}
				if ev != nil {
					select {
					case events <- ChatEvent{Response: ev}:
					case <-ctx.Done():
						return
					}
				}
			}
		}

		if readErr != nil {
			if readErr != io.EOF && ctx.Err() == nil {
				select {
				case events <- ChatEvent{Err: fmt.Errorf("read chat stream: %w", readErr)}:
				case <-ctx.Done():
				}
			}
			return
		}
	}
}

// splitFrames splits buffered stream text on blank lines into complete
// frames, returning the trailing partial frame to retain for the next read.
func splitFrames(s string) (frames []string, rest string) {
	for {
		idx := strings.Index(s, "\n\n")
		if idx < 0 {
			return frames, s
		}
		frames = append(frames, s[:idx])
		s = s[idx+2:]
	}
}

// decodeFrame parses one SSE frame. Returns done=true for the sentinel. A
// frame that is not valid JSON is dropped per the ParseError policy: log it
// and keep the stream alive.
func (c *Client) decodeFrame(frame string) (done bool, resp *content.AgentResponse) {
	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == doneSentinel {
			return true, nil
		}

		var ar content.AgentResponse
		if err := json.Unmarshal([]byte(payload), &ar); err != nil {
			c.logger.Warn("dropping malformed chat frame", "error", err, "payload", payload)
			continue
		}
		return false, &ar
	}
	return false, nil
}
