package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adcraftlabs/adcraft/internal/content"
)

// eventBufferSize absorbs UI render delays without blocking the poller.
// The poll loop emits at most one event per second, so a small buffer is
// plenty.
const eventBufferSize = 8

// GenerationEvent is a discriminated union for generation progress.
// Exactly one field is set per event. Result and Err are terminal: the
// channel is closed immediately after either is delivered.
type GenerationEvent struct {
	Status    string                    // workflow status text (when non-empty)
	Heartbeat string                    // periodic liveness text (when non-empty)
	Result    *content.GeneratedContent // final output (when non-nil)
	Err       error                     // terminal failure (when non-nil)
}

type startGenerationRequest struct {
	Brief          content.CreativeBrief `json:"brief"`
	Products       []content.Product     `json:"products"`
	GenerateImages bool                  `json:"generate_images"`
	ConversationID string                `json:"conversation_id,omitempty"`
	UserID         string                `json:"user_id"`
}

type startGenerationResponse struct {
	TaskID string `json:"task_id"`
}

// StartGeneration submits a generation request and returns the server-side
// task id to poll. Most callers want Generate, which wraps the full
// start+poll protocol.
func (c *Client) StartGeneration(ctx context.Context, brief content.CreativeBrief, products []content.Product, generateImages bool, conversationID string) (string, error) {
	var resp startGenerationResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/generate/start", nil, startGenerationRequest{
		Brief:          brief,
		Products:       products,
		GenerateImages: generateImages,
		ConversationID: conversationID,
		UserID:         c.userID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("generation start returned empty task id")
	}
	return resp.TaskID, nil
}

// Task status values reported by the generation status endpoint.
const (
	taskRunning   = "running"
	taskCompleted = "completed"
	taskFailed    = "failed"
)

// TaskStatus is the polled state of a long-running generation task.
type TaskStatus struct {
	Status string                    `json:"status"`
	Result *content.GeneratedContent `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

// GenerationStatus fetches the current state of a generation task.
func (c *Client) GenerationStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	var status TaskStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/generate/status/"+taskID, nil, nil, &status); err != nil {
		return TaskStatus{}, err
	}
	return status, nil
}

// Generate runs the full generation protocol and returns a channel of
// progress events. The producer goroutine:
//
//  1. starts a server-side task,
//  2. emits an immediate Status event so the UI shows feedback at once,
//  3. polls the task status once per poll interval,
//  4. emits a Heartbeat every 5th running poll with elapsed time,
//  5. emits exactly one terminal event (Result or Err) and closes the
//     channel.
//
// Transient poll failures are logged and retried; only exhausting the
// attempt ceiling surfaces ErrGenerationTimeout. Cancellation is
// cooperative: cancel ctx and the goroutine stops polling. The server task
// itself keeps running; the backend exposes no cancel endpoint.
func (c *Client) Generate(ctx context.Context, brief content.CreativeBrief, products []content.Product, generateImages bool, conversationID string) <-chan GenerationEvent {
	events := make(chan GenerationEvent, eventBufferSize)

	go func() {
		defer close(events)

		// Panic recovery so a poller bug degrades to a failed generation
		// instead of locking up the TUI.
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("generation poller panic recovered", "panic", r)
				select {
				case events <- GenerationEvent{Err: fmt.Errorf("generation poller panic: %v", r)}:
				default:
				}
			}
		}()

		taskID, err := c.StartGeneration(ctx, brief, products, generateImages, conversationID)
		if err != nil {
			emit(ctx, events, GenerationEvent{Err: fmt.Errorf("start generation: %w", err)})
			return
		}

		if !emit(ctx, events, GenerationEvent{Status: "Generation started. The agents are working on your content..."}) {
			return
		}

		c.pollTask(ctx, taskID, events)
	}()

	return events
}

// pollTask drives the status poll loop until a terminal event is emitted.
func (c *Client) pollTask(ctx context.Context, taskID string, events chan<- GenerationEvent) {
	start := time.Now()

	for attempt := 1; attempt <= c.pollAttempts; attempt++ {
		status, err := c.GenerationStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				emit(ctx, events, GenerationEvent{Err: ctx.Err()})
				return
			}
			// Transient poll failure (network blip): swallow and retry.
			// Only the attempt ceiling turns this into a hard failure.
			c.logger.Debug("generation status poll failed", "task_id", taskID, "attempt", attempt, "error", err)
		} else {
			switch status.Status {
			case taskCompleted:
				result := status.Result
				if result == nil {
					result = &content.GeneratedContent{}
				}
				emit(ctx, events, GenerationEvent{Result: result})
				return

			case taskFailed:
				emit(ctx, events, GenerationEvent{Err: &GenerationError{TaskID: taskID, Message: status.Error}})
				return

			case taskRunning:
				if attempt%heartbeatEveryNPolls == 0 {
					elapsed := int(time.Since(start).Round(time.Second).Seconds())
					hb := fmt.Sprintf("Still generating... (%ds elapsed)", elapsed)
					if !emit(ctx, events, GenerationEvent{Heartbeat: hb}) {
						return
					}
				}

			default:
				c.logger.Warn("unknown generation task status", "task_id", taskID, "status", status.Status)
			}
		}

		// No sleep after the final attempt; timeout surfaces immediately.
		if attempt == c.pollAttempts {
			break
		}
		select {
		case <-ctx.Done():
			emit(ctx, events, GenerationEvent{Err: ctx.Err()})
			return
		case <-time.After(c.pollInterval):
		}
	}

	emit(ctx, events, GenerationEvent{Err: ErrGenerationTimeout})
}

// emit delivers an event unless ctx is already canceled. Returns false when
// the consumer is gone and the producer should stop.
func emit(ctx context.Context, events chan<- GenerationEvent, ev GenerationEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
