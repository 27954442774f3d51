package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/history"
)

// historyListMsg carries the conversation listing back to the event loop.
type historyListMsg struct {
	listing history.Listing
}

// conversationLoadedMsg carries a resumed conversation.
type conversationLoadedMsg struct {
	conv content.Conversation
	err  error
}

// listHistory fetches stored conversations, merging in the live session.
func (m *Model) listHistory() (tea.Model, tea.Cmd) {
	if m.gateway == nil {
		m.systemNote("Conversation history is unavailable in this session.")
		return m, nil
	}

	m.state = StateBusy
	summary := m.controller.Summary()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, turnTimeout)
		defer cancel()
		return historyListMsg{listing: m.gateway.List(ctx, &summary)}
	})
}

// resumeConversation loads a stored conversation by list number or id.
func (m *Model) resumeConversation(arg string) (tea.Model, tea.Cmd) {
	if m.gateway == nil {
		m.systemNote("Conversation history is unavailable in this session.")
		return m, nil
	}
	if arg == "" {
		m.systemNote("Usage: " + cmdResume + " <number from " + cmdHistory + ", or conversation id>")
		return m, nil
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(m.lastListing) {
			m.systemNote(fmt.Sprintf("No conversation %d in the last %s listing.", n, cmdHistory))
			return m, nil
		}
		id = m.lastListing[n-1].ID
	}

	m.state = StateBusy
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, turnTimeout)
		defer cancel()
		conv, err := m.gateway.Get(ctx, id)
		return conversationLoadedMsg{conv: conv, err: err}
	})
}

// renderHistoryListing renders the conversation list with resume numbers.
func (m *Model) renderHistoryListing(listing history.Listing) string {
	if len(listing.Summaries) == 0 {
		if listing.Retryable {
			return "Could not reach the backend. " + cmdHistory + " to retry."
		}
		return "No stored conversations yet."
	}

	var b strings.Builder
	_, _ = b.WriteString(m.styles.PanelTitle.Render("Conversations"))
	_, _ = b.WriteString("\n")
	for i, s := range listing.Summaries {
		marker := "  "
		if s.ID == m.controller.ConversationID() {
			marker = m.styles.Approved.Render("* ")
		}
		_, _ = b.WriteString(fmt.Sprintf("%s%2d. %s", marker, i+1, s.Title))
		_, _ = b.WriteString(m.styles.System.Render(fmt.Sprintf("  (%d messages, %s)",
			s.MessageCount, relativeTime(s.Timestamp))))
		_, _ = b.WriteString("\n")
	}
	if listing.Retryable {
		_, _ = b.WriteString(m.styles.System.Render("Backend unreachable; showing the live session only."))
		_, _ = b.WriteString("\n")
	}
	_, _ = b.WriteString(m.styles.System.Render(cmdResume + " <n> to continue one."))
	return b.String()
}

// relativeTime formats a timestamp as a short "ago" string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "just now"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
