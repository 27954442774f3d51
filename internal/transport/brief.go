package transport

import (
	"context"
	"net/http"

	"github.com/adcraftlabs/adcraft/internal/content"
)

type parseBriefRequest struct {
	BriefText      string `json:"brief_text"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id"`
}

// ParseBrief sends free text to the brief-parsing agent and returns the
// structured brief it extracted. On failure the caller must stay in its
// current stage; a failed parse never advances the workflow.
func (c *Client) ParseBrief(ctx context.Context, text, conversationID string) (content.CreativeBrief, error) {
	var brief content.CreativeBrief
	err := c.doJSON(ctx, http.MethodPost, "/api/brief/parse", nil, parseBriefRequest{
		BriefText:      text,
		ConversationID: conversationID,
		UserID:         c.userID,
	}, &brief)
	if err != nil {
		return content.CreativeBrief{}, err
	}
	return brief, nil
}

type confirmBriefRequest struct {
	Brief          content.CreativeBrief `json:"brief"`
	ConversationID string                `json:"conversation_id,omitempty"`
	UserID         string                `json:"user_id"`
}

type confirmBriefResponse struct {
	Status         string                `json:"status"`
	ConversationID string                `json:"conversation_id"`
	Brief          content.CreativeBrief `json:"brief"`
}

// ConfirmBrief freezes a pending brief. Confirmation is idempotent on the
// server: confirming an already-confirmed brief re-returns it unchanged, so
// the returned brief always reflects what generation will use.
func (c *Client) ConfirmBrief(ctx context.Context, brief content.CreativeBrief, conversationID string) (content.CreativeBrief, error) {
	var resp confirmBriefResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/brief/confirm", nil, confirmBriefRequest{
		Brief:          brief,
		ConversationID: conversationID,
		UserID:         c.userID,
	}, &resp)
	if err != nil {
		return content.CreativeBrief{}, err
	}
	return resp.Brief, nil
}
