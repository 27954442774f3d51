package conversation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/conversation"
	"github.com/adcraftlabs/adcraft/internal/log"
	"github.com/adcraftlabs/adcraft/internal/transport"
)

// paintBackend scripts the full HTTP contract for one campaign workflow:
// parse a brief, confirm it, select a paint product, then run a generation
// task that polls as running twice before completing.
type paintBackend struct {
	polls atomic.Int32
}

func (b *paintBackend) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/brief/parse", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["brief_text"])
		json.NewEncoder(w).Encode(content.CreativeBrief{
			Overview:       "Spring paint line launch",
			TargetAudience: "homeowners refreshing interiors",
			KeyMessage:     "Color that lasts",
			CTA:            "Find your color",
		})
	})

	mux.HandleFunc("POST /api/brief/confirm", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Brief content.CreativeBrief `json:"brief"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]any{
			"status": "confirmed",
			"brief":  req.Brief,
		})
	})

	mux.HandleFunc("POST /api/products/select", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"action":  "added",
			"message": "Added Sage Green to the selection.",
			"products": []content.Product{
				{SKU: "PAINT-204", ProductName: "Sage Green Interior", Price: 42.99, HexValue: "#9CAF88"},
			},
		})
	})

	mux.HandleFunc("POST /api/generate/start", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Brief    content.CreativeBrief `json:"brief"`
			Products []content.Product     `json:"products"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "homeowners refreshing interiors", req.Brief.TargetAudience)
		require.Len(t, req.Products, 1)
		assert.Equal(t, "PAINT-204", req.Products[0].SKU)
		json.NewEncoder(w).Encode(map[string]string{"task_id": "task-77"})
	})

	mux.HandleFunc("GET /api/generate/status/task-77", func(w http.ResponseWriter, r *http.Request) {
		if b.polls.Add(1) <= 2 {
			json.NewEncoder(w).Encode(map[string]string{"status": "running"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status": "completed",
			"result": content.GeneratedContent{
				TextContent: "# Spring Refresh\n\nSage Green brings calm to any room.",
				Violations: []content.ComplianceViolation{
					{Severity: content.SeverityInfo, Message: "Consider a pricing disclaimer."},
				},
			},
		})
	})

	return mux
}

// The homeowners campaign driven end to end through a real transport client
// against a scripted HTTP backend.
func TestCampaignWorkflowAgainstFakeBackend(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)

	backend := &paintBackend{}
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	client, err := transport.New(srv.URL, "test-user", log.NewNop(),
		transport.WithPollInterval(time.Millisecond),
		transport.WithPollAttempts(10))
	require.NoError(t, err)

	ctrl, err := conversation.NewController(client, false, log.NewNop())
	require.NoError(t, err)

	ctx := t.Context()

	require.NoError(t, ctrl.SendText(ctx, "Promote our new paint line to homeowners"))
	snap := ctrl.Snapshot()
	assert.Equal(t, conversation.StageBriefPending, snap.Stage)
	require.NotNil(t, snap.PendingBrief)
	assert.Equal(t, "homeowners refreshing interiors", snap.PendingBrief.TargetAudience)

	require.NoError(t, ctrl.Confirm(ctx))
	snap = ctrl.Snapshot()
	assert.Equal(t, conversation.StageBriefConfirmed, snap.Stage)
	require.NotNil(t, snap.ConfirmedBrief)

	require.NoError(t, ctrl.Select(ctx, "add the sage green one"))
	snap = ctrl.Snapshot()
	assert.Equal(t, conversation.StageProductReview, snap.Stage)
	require.Len(t, snap.Selected, 1)
	assert.Equal(t, "PAINT-204", snap.Selected[0].SKU)

	events, err := ctrl.Generate(ctx)
	require.NoError(t, err)
	for ev := range events {
		ctrl.ApplyGenerationEvent(ev)
	}

	snap = ctrl.Snapshot()
	assert.Equal(t, conversation.StageContentPreview, snap.Stage)
	assert.False(t, snap.Generating)
	require.NotNil(t, snap.Generated)
	assert.Empty(t, snap.Generated.Error)
	assert.Contains(t, snap.Generated.TextContent, "Sage Green")
	assert.False(t, snap.Generated.Approved(), "any violation blocks the approved verdict")
	assert.False(t, snap.Generated.RequiresModification)
	assert.GreaterOrEqual(t, int(backend.polls.Load()), 3)
}
