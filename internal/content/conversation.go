package content

import "time"

// ConversationSummary is the list-display projection of a conversation.
// The active conversation's summary is computed from in-memory messages and
// overrides any stale server copy of the same id (the server copy is always
// one round-trip behind).
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"messageCount"`
}

// Conversation is a fully loaded server-stored conversation.
type Conversation struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []ChatMessage `json:"messages"`
}
