// Package history is the gateway between the conversation UI and the
// server-side conversation store. Listing is non-fatal by contract: the
// sidebar must render even when the backend is down, so List degrades to an
// empty result with a retryable marker instead of failing the caller.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/log"
)

// Store is the transport surface the gateway drives. Implemented by
// *transport.Client.
type Store interface {
	ListConversations(ctx context.Context) ([]content.ConversationSummary, error)
	GetConversation(ctx context.Context, id string) (content.Conversation, error)
	RenameConversation(ctx context.Context, id, title string) error
	DeleteConversation(ctx context.Context, id string) error
}

// Listing is the result of a List call. Retryable is set when the backend
// could not be reached; Summaries is always non-nil.
type Listing struct {
	Summaries []content.ConversationSummary
	Retryable bool
}

// Gateway mediates conversation persistence operations.
type Gateway struct {
	store  Store
	logger log.Logger
}

// NewGateway creates a gateway over the given store.
func NewGateway(store Store, logger log.Logger) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("history.NewGateway: store is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Gateway{
		store:  store,
		logger: logger.With("component", "history"),
	}, nil
}

// List fetches the stored conversations, newest first, merging in the live
// state of the active conversation when one is provided. List never returns
// an error: on transport failure the listing is empty and marked retryable.
//
// The merge rule exists because the server's copy of the active
// conversation is one round-trip stale. The live message count, last
// message, and timestamp override the server's entry in place; a live
// conversation the server has not stored yet is prepended.
func (g *Gateway) List(ctx context.Context, active *content.ConversationSummary) Listing {
	summaries, err := g.store.ListConversations(ctx)
	if err != nil {
		g.logger.Warn("listing conversations failed", "error", err)
		return Listing{
			Summaries: mergeActive(nil, active),
			Retryable: true,
		}
	}

	merged := mergeActive(summaries, active)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return Listing{Summaries: merged}
}

// mergeActive overlays the live summary of the active conversation onto the
// server's listing. Only the fields the live session is authoritative for
// (message count, last message, timestamp) override a stored entry; a
// server-side title, which may have been renamed, is kept.
func mergeActive(summaries []content.ConversationSummary, active *content.ConversationSummary) []content.ConversationSummary {
	if summaries == nil {
		summaries = []content.ConversationSummary{}
	}
	if active == nil || active.MessageCount == 0 {
		return summaries
	}

	for i, s := range summaries {
		if s.ID == active.ID {
			summaries[i].MessageCount = active.MessageCount
			summaries[i].LastMessage = active.LastMessage
			summaries[i].Timestamp = active.Timestamp
			return summaries
		}
	}
	return append([]content.ConversationSummary{*active}, summaries...)
}

// Get loads a full stored conversation.
func (g *Gateway) Get(ctx context.Context, id string) (content.Conversation, error) {
	if id == "" {
		return content.Conversation{}, errors.New("history: conversation id is required")
	}
	conv, err := g.store.GetConversation(ctx, id)
	if err != nil {
		return content.Conversation{}, fmt.Errorf("loading conversation %s: %w", id, err)
	}
	return conv, nil
}

// Rename changes a stored conversation's title. The caller applies the new
// title optimistically; a failure here means the local and server titles
// have diverged until the next List.
func (g *Gateway) Rename(ctx context.Context, id, title string) error {
	if id == "" {
		return errors.New("history: conversation id is required")
	}
	if title == "" {
		return errors.New("history: title is required")
	}
	if err := g.store.RenameConversation(ctx, id, title); err != nil {
		return fmt.Errorf("renaming conversation %s: %w", id, err)
	}
	return nil
}

// Delete removes a stored conversation. The returned activeDeleted reports
// whether the deleted conversation was the caller's active one, in which
// case the caller must reset its session.
func (g *Gateway) Delete(ctx context.Context, id, activeID string) (activeDeleted bool, err error) {
	if id == "" {
		return false, errors.New("history: conversation id is required")
	}
	if err := g.store.DeleteConversation(ctx, id); err != nil {
		return false, fmt.Errorf("deleting conversation %s: %w", id, err)
	}
	return id == activeID, nil
}
