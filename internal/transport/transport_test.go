package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/log"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "test-user", log.NewNop(), opts...)
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "user", log.NewNop())
	assert.Error(t, err)

	_, err = New("http://localhost:8000", "", log.NewNop())
	assert.Error(t, err)

	c, err := New("http://localhost:8000/", "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.baseURL, "trailing slash trimmed")
}

func TestParseBrief(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/brief/parse", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Promote our new paint line to homeowners", req["brief_text"])
		assert.Equal(t, "test-user", req["user_id"])
		assert.Equal(t, "conv-1", req["conversation_id"])

		json.NewEncoder(w).Encode(content.CreativeBrief{
			Overview:       "New paint line launch",
			TargetAudience: "homeowners",
		})
	}))

	brief, err := client.ParseBrief(t.Context(), "Promote our new paint line to homeowners", "conv-1")
	require.NoError(t, err)
	assert.Contains(t, brief.TargetAudience, "homeowners")
}

func TestParseBrief_RequestError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "brief parser unavailable", http.StatusBadGateway)
	}))

	_, err := client.ParseBrief(t.Context(), "anything", "")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "brief parser unavailable")
}

func TestConfirmBrief_RoundTripsFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/brief/confirm", r.URL.Path)

		var req confirmBriefRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// Confirmation must not mutate brief content.
		json.NewEncoder(w).Encode(confirmBriefResponse{
			Status:         "confirmed",
			ConversationID: "conv-1",
			Brief:          req.Brief,
		})
	}))

	in := content.CreativeBrief{
		Overview:       "Spring campaign",
		Objectives:     "Drive trial",
		TargetAudience: "homeowners",
		KeyMessage:     "Color that lasts",
		ToneAndStyle:   "warm, confident",
		CTA:            "Find your color",
	}

	out, err := client.ConfirmBrief(t.Context(), in, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSelectProducts(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req selectProductsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "add the sage green one", req.Request)
		require.NotNil(t, req.CurrentProducts, "current_products must serialize as [] not null")

		json.NewEncoder(w).Encode(selectProductsResponse{
			Products: []content.Product{{SKU: "SKU-001", ProductName: "Sage Whisper"}},
			Action:   "added",
			Message:  "Added Sage Whisper to your selection.",
		})
	}))

	sel, err := client.SelectProducts(t.Context(), "add the sage green one", nil, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, content.ActionAdded, sel.Action)
	require.Len(t, sel.Products, 1)
	assert.Equal(t, "SKU-001", sel.Products[0].SKU)
	assert.NotEmpty(t, sel.Message)
}

func TestSelectProducts_UnrecognizedAction(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(selectProductsResponse{
			Products: []content.Product{},
			Action:   "reshuffled", // not in the contract
		})
	}))

	sel, err := client.SelectProducts(t.Context(), "do something odd", nil, "")
	require.NoError(t, err, "unknown action is a fallback variant, not a failure")
	assert.Equal(t, content.ActionUnknown, sel.Action)
}

func TestListProducts_QueryParameters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "paint", q.Get("category"))
		assert.Equal(t, "green", q.Get("search"))
		assert.Equal(t, "25", q.Get("limit"))

		json.NewEncoder(w).Encode(listProductsResponse{
			Products: []content.Product{
				{SKU: "SKU-001", ProductName: "Sage Whisper", HexValue: "#9CAF88"},
				{SKU: "SKU-002", ProductName: "Forest Depth", HexValue: "#2D4A32"},
			},
			Count: 2,
		})
	}))

	products, err := client.ListProducts(t.Context(), ProductQuery{Category: "paint", Search: "green", Limit: 25})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "#9CAF88", products[0].HexValue)
}

func TestConversationCRUD(t *testing.T) {
	var renamed, deleted string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/conversations":
			json.NewEncoder(w).Encode(listConversationsResponse{
				Conversations: []content.ConversationSummary{
					{ID: "conv-1", Title: "Paint launch", MessageCount: 4},
				},
				Count: 1,
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/conversations/conv-1":
			json.NewEncoder(w).Encode(content.Conversation{
				ID:    "conv-1",
				Title: "Paint launch",
				Messages: []content.ChatMessage{
					{Role: content.RoleUser, Content: "hello"},
				},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/api/conversations/conv-1":
			var req renameConversationRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			renamed = req.Title
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/conversations/conv-1":
			deleted = "conv-1"
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := t.Context()

	summaries, err := client.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].MessageCount)

	conv, err := client.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)

	require.NoError(t, client.RenameConversation(ctx, "conv-1", "Spring paint launch"))
	assert.Equal(t, "Spring paint launch", renamed)

	require.NoError(t, client.DeleteConversation(ctx, "conv-1"))
	assert.Equal(t, "conv-1", deleted)
}

func TestGenerationError_Message(t *testing.T) {
	err := &GenerationError{TaskID: "task-1", Message: "content_filter triggered"}
	assert.Contains(t, err.Error(), "content_filter triggered")
	assert.True(t, content.ContentFiltered(err.Message))

	generic := &GenerationError{TaskID: "task-2"}
	assert.Contains(t, generic.Error(), "task-2")
	assert.False(t, errors.Is(generic, ErrGenerationTimeout))
}
