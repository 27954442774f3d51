// Package conversation holds the single source of truth for the active
// co-authoring session: the message log, the brief lifecycle, the product
// selection, and the generated content. Controller defines the legal stage
// transitions driven by user intents and transport events.
package conversation

import (
	"github.com/google/uuid"

	"github.com/adcraftlabs/adcraft/internal/content"
)

// Stage is the current discrete phase of the workflow.
type Stage int

// Workflow stages. content_preview can loop back to product_review
// (regenerate with different products) or to a fresh content_preview
// (regenerate with the same products).
const (
	StageWelcome Stage = iota
	StageBriefPending
	StageBriefConfirmed
	StageProductReview
	StageContentPreview
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageWelcome:
		return "welcome"
	case StageBriefPending:
		return "brief_pending"
	case StageBriefConfirmed:
		return "brief_confirmed"
	case StageProductReview:
		return "product_review"
	case StageContentPreview:
		return "content_preview"
	default:
		return "unknown"
	}
}

// Session is the value object for one active conversation. It is owned and
// mutated exclusively by a Controller; consumers get copies via Snapshot.
//
// Invariants maintained by the Controller:
//   - ConfirmedBrief is non-nil iff Stage >= StageBriefConfirmed
//   - Generated is non-nil iff Stage == StageContentPreview
type Session struct {
	ID             string
	Stage          Stage
	Messages       []content.ChatMessage
	PendingBrief   *content.CreativeBrief
	ConfirmedBrief *content.CreativeBrief
	Selected       []content.Product
	Generated      *content.GeneratedContent
	GenerateImages bool
	Generating     bool
	StatusLine     string
}

// newSession allocates a fresh session with a new conversation id.
func newSession(generateImages bool) Session {
	return Session{
		ID:             uuid.NewString(),
		Stage:          StageWelcome,
		GenerateImages: generateImages,
	}
}

// Summary projects the live session into a list entry. The server's copy of
// the same conversation is always one round-trip stale; this projection
// overrides it during merge.
func (s Session) Summary() content.ConversationSummary {
	summary := content.ConversationSummary{
		ID:           s.ID,
		Title:        "New conversation",
		MessageCount: len(s.Messages),
	}
	if len(s.Messages) > 0 {
		first := s.Messages[0]
		summary.Title = truncateTitle(first.Content)
		last := s.Messages[len(s.Messages)-1]
		summary.LastMessage = last.Content
		summary.Timestamp = last.Timestamp
	}
	return summary
}

// maxTitleRunes bounds list-display titles derived from the first message.
const maxTitleRunes = 48

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= maxTitleRunes {
		return s
	}
	return string(runes[:maxTitleRunes-1]) + "…"
}
