package transport

import (
	"context"
	"net/http"

	"github.com/adcraftlabs/adcraft/internal/content"
)

type listConversationsResponse struct {
	Conversations []content.ConversationSummary `json:"conversations"`
	Count         int                           `json:"count"`
}

// ListConversations fetches summaries of all server-stored conversations.
// Idempotent; transient failures are retried with backoff.
func (c *Client) ListConversations(ctx context.Context) ([]content.ConversationSummary, error) {
	var resp listConversationsResponse
	if err := c.getJSON(ctx, "/api/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// GetConversation loads one conversation with its full message history.
func (c *Client) GetConversation(ctx context.Context, id string) (content.Conversation, error) {
	var conv content.Conversation
	if err := c.getJSON(ctx, "/api/conversations/"+id, nil, &conv); err != nil {
		return content.Conversation{}, err
	}
	return conv, nil
}

type renameConversationRequest struct {
	Title string `json:"title"`
}

// RenameConversation updates a conversation's title.
func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	return c.doJSON(ctx, http.MethodPut, "/api/conversations/"+id, nil, renameConversationRequest{Title: title}, nil)
}

// DeleteConversation removes a server-stored conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/conversations/"+id, nil, nil, nil)
}
