// Package content defines the domain model shared by the transport client,
// the conversation state machine, and the TUI: chat messages, creative
// briefs, products, generated content, and compliance violations.
//
// Field names on the wire follow the backend's HTTP/JSON contract.
package content

import (
	"time"

	"github.com/google/uuid"
)

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single conversation message. Messages are immutable once
// appended and form an append-only, ordered sequence within a conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Agent     string    `json:"agent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage creates a message with a fresh id and the current time.
func NewChatMessage(role, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   text,
		Timestamp: time.Now(),
	}
}

// AgentMessage creates an assistant message attributed to a named agent.
func AgentMessage(agent, text string) ChatMessage {
	msg := NewChatMessage(RoleAssistant, text)
	msg.Agent = agent
	return msg
}

// AgentResponse is one decoded frame of the /api/chat event stream.
type AgentResponse struct {
	Agent   string `json:"agent,omitempty"`
	Content string `json:"content"`
}
