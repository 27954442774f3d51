package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/log"
)

type fakeStore struct {
	summaries []content.ConversationSummary
	listErr   error

	conversation content.Conversation
	getErr       error

	renameErr  error
	renamedID  string
	renamedTo  string
	deleteErr  error
	deletedIDs []string
}

func (f *fakeStore) ListConversations(_ context.Context) ([]content.ConversationSummary, error) {
	return f.summaries, f.listErr
}

func (f *fakeStore) GetConversation(_ context.Context, _ string) (content.Conversation, error) {
	return f.conversation, f.getErr
}

func (f *fakeStore) RenameConversation(_ context.Context, id, title string) error {
	f.renamedID, f.renamedTo = id, title
	return f.renameErr
}

func (f *fakeStore) DeleteConversation(_ context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

func newTestGateway(t *testing.T, store *fakeStore) *Gateway {
	t.Helper()
	g, err := NewGateway(store, log.NewNop())
	require.NoError(t, err)
	return g
}

func TestNewGateway_RequiresStore(t *testing.T) {
	_, err := NewGateway(nil, log.NewNop())
	assert.Error(t, err)
}

func TestList_SortsNewestFirst(t *testing.T) {
	now := time.Now()
	store := &fakeStore{summaries: []content.ConversationSummary{
		{ID: "old", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "new", Timestamp: now},
		{ID: "mid", Timestamp: now.Add(-time.Hour)},
	}}
	g := newTestGateway(t, store)

	listing := g.List(t.Context(), nil)
	require.False(t, listing.Retryable)
	require.Len(t, listing.Summaries, 3)
	assert.Equal(t, "new", listing.Summaries[0].ID)
	assert.Equal(t, "mid", listing.Summaries[1].ID)
	assert.Equal(t, "old", listing.Summaries[2].ID)
}

func TestList_TransportFailureIsRetryableNotFatal(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	g := newTestGateway(t, store)

	listing := g.List(t.Context(), nil)
	assert.True(t, listing.Retryable)
	assert.NotNil(t, listing.Summaries)
	assert.Empty(t, listing.Summaries)
}

func TestList_ActiveSummaryOverridesStaleServerCopy(t *testing.T) {
	now := time.Now()
	store := &fakeStore{summaries: []content.ConversationSummary{
		{ID: "conv-1", Title: "stale", MessageCount: 1, Timestamp: now.Add(-time.Minute)},
		{ID: "conv-2", Title: "other", MessageCount: 4, Timestamp: now.Add(-time.Hour)},
	}}
	g := newTestGateway(t, store)

	live := &content.ConversationSummary{
		ID: "conv-1", Title: "stale", LastMessage: "latest turn",
		MessageCount: 3, Timestamp: now,
	}
	listing := g.List(t.Context(), live)

	require.Len(t, listing.Summaries, 2)
	assert.Equal(t, "conv-1", listing.Summaries[0].ID)
	assert.Equal(t, 3, listing.Summaries[0].MessageCount, "live count wins over stale server copy")
	assert.Equal(t, "latest turn", listing.Summaries[0].LastMessage)
}

func TestList_MergePreservesServerSideRename(t *testing.T) {
	now := time.Now()
	store := &fakeStore{summaries: []content.ConversationSummary{
		{ID: "conv-1", Title: "Q3 launch campaign", MessageCount: 1, Timestamp: now.Add(-time.Minute)},
	}}
	g := newTestGateway(t, store)

	// The live title is derived from the first message and must not clobber
	// a title renamed on the server.
	live := &content.ConversationSummary{
		ID: "conv-1", Title: "Promote our new paint line to ho…",
		LastMessage: "latest turn", MessageCount: 3, Timestamp: now,
	}
	listing := g.List(t.Context(), live)

	require.Len(t, listing.Summaries, 1)
	assert.Equal(t, "Q3 launch campaign", listing.Summaries[0].Title)
	assert.Equal(t, 3, listing.Summaries[0].MessageCount)
}

func TestList_UnstoredActiveConversationIsSynthesized(t *testing.T) {
	now := time.Now()
	store := &fakeStore{summaries: []content.ConversationSummary{
		{ID: "conv-1", Timestamp: now.Add(-time.Minute)},
	}}
	g := newTestGateway(t, store)

	live := &content.ConversationSummary{ID: "conv-new", Title: "Fresh brief", MessageCount: 2, Timestamp: now}
	listing := g.List(t.Context(), live)

	require.Len(t, listing.Summaries, 2)
	assert.Equal(t, "conv-new", listing.Summaries[0].ID)
}

func TestList_EmptyActiveSessionIsNotListed(t *testing.T) {
	store := &fakeStore{}
	g := newTestGateway(t, store)

	live := &content.ConversationSummary{ID: "conv-empty", Title: "New conversation", MessageCount: 0}
	listing := g.List(t.Context(), live)
	assert.Empty(t, listing.Summaries, "a session with no messages has nothing to show")
}

func TestList_ActiveMergedEvenWhenBackendDown(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	g := newTestGateway(t, store)

	live := &content.ConversationSummary{ID: "conv-live", MessageCount: 2, Timestamp: time.Now()}
	listing := g.List(t.Context(), live)

	assert.True(t, listing.Retryable)
	require.Len(t, listing.Summaries, 1)
	assert.Equal(t, "conv-live", listing.Summaries[0].ID)
}

func TestGet(t *testing.T) {
	store := &fakeStore{conversation: content.Conversation{
		ID:    "conv-1",
		Title: "Paint launch",
		Messages: []content.ChatMessage{
			{Role: content.RoleUser, Content: "hello"},
		},
	}}
	g := newTestGateway(t, store)

	conv, err := g.Get(t.Context(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "Paint launch", conv.Title)
	assert.Len(t, conv.Messages, 1)

	_, err = g.Get(t.Context(), "")
	assert.Error(t, err)

	store.getErr = errors.New("not found")
	_, err = g.Get(t.Context(), "conv-404")
	assert.ErrorContains(t, err, "conv-404")
}

func TestRename(t *testing.T) {
	store := &fakeStore{}
	g := newTestGateway(t, store)

	require.NoError(t, g.Rename(t.Context(), "conv-1", "Spring campaign"))
	assert.Equal(t, "conv-1", store.renamedID)
	assert.Equal(t, "Spring campaign", store.renamedTo)

	assert.Error(t, g.Rename(t.Context(), "", "x"))
	assert.Error(t, g.Rename(t.Context(), "conv-1", ""))

	store.renameErr = errors.New("backend down")
	assert.Error(t, g.Rename(t.Context(), "conv-1", "Other"))
}

func TestDelete_ReportsWhenActiveConversationDies(t *testing.T) {
	store := &fakeStore{}
	g := newTestGateway(t, store)

	activeDeleted, err := g.Delete(t.Context(), "conv-1", "conv-1")
	require.NoError(t, err)
	assert.True(t, activeDeleted)

	activeDeleted, err = g.Delete(t.Context(), "conv-2", "conv-1")
	require.NoError(t, err)
	assert.False(t, activeDeleted)

	assert.Equal(t, []string{"conv-1", "conv-2"}, store.deletedIDs)

	store.deleteErr = errors.New("backend down")
	_, err = g.Delete(t.Context(), "conv-3", "conv-1")
	assert.Error(t, err)
}
