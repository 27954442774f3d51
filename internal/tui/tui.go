// Package tui provides the Bubble Tea terminal interface for adcraft.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/conversation"
	"github.com/adcraftlabs/adcraft/internal/history"
	"github.com/adcraftlabs/adcraft/internal/log"
)

// State represents TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput      State = iota // Awaiting user input
	StateBusy                    // A turn (parse/confirm/select) is in flight
	StateGenerating              // Generation is running, events streaming in
)

// Memory bounds to prevent unbounded growth.
const maxHistory = 100 // Maximum command history entries

// turnTimeout bounds a single non-generation backend turn.
const turnTimeout = time.Minute

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Two separator lines (above and below input)
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// Model is the Bubble Tea model for the adcraft terminal interface.
type Model struct {
	// Input (textarea for multi-line support, Shift+Enter for newline)
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Output
	spinner  spinner.Model
	viewBuf  strings.Builder // Reusable buffer for View() to reduce allocations
	viewport viewport.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// Last /history listing, indexed by /resume numbers
	lastListing []content.ConversationSummary

	// Generation event plumbing
	// Note: No sync.WaitGroup - Bubble Tea's event loop provides synchronization.
	genCancel context.CancelFunc
	genEvents <-chan generationEvent

	// Dependencies
	controller *conversation.Controller
	gateway    *history.Gateway
	logger     log.Logger
	ctx        context.Context
	ctxCancel  context.CancelFunc

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a TUI model driving the given controller.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, controller *conversation.Controller, gateway *history.Gateway, logger log.Logger) (*Model, error) {
	if controller == nil {
		return nil, errors.New("tui.New: controller is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds newline (default behavior)
	ta := textarea.New()
	ta.Placeholder = "Describe what you'd like to promote..."
	ta.SetHeight(1)
	ta.SetWidth(120) // Updated on WindowSizeMsg
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Disable built-in viewport keyboard handling; keys are routed
	// explicitly in handleKey to avoid conflicts with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &Model{
		controller: controller,
		gateway:    gateway,
		logger:     logger.With("component", "tui"),
		ctx:        ctx,
		ctxCancel:  cancel,
		input:      ta,
		spinner:    sp,
		viewport:   vp,
		help:       help.New(),
		keys:       newKeyMap(),
		styles:     DefaultStyles(),
		history:    make([]string, 0, maxHistory),
		markdown:   newMarkdownRenderer(80),
		width:      80,
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state != StateInput {
			m.rebuildViewportContent()
		}
		return m, cmd

	case turnDoneMsg:
		m.state = StateInput
		if msg.note != "" {
			// Guard hint that never reached the backend.
			m.systemNote(msg.note)
			return m, m.input.Focus()
		}
		// Backend failures are already folded into the session as
		// assistant-role messages; a rebuild shows them.
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case generationStartedMsg:
		m.genCancel = msg.cancel
		m.genEvents = msg.events
		m.state = StateGenerating
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, listenForGeneration(msg.events))

	case generationEventMsg:
		m.controller.ApplyGenerationEvent(msg.event)
		if msg.event.Result != nil || msg.event.Err != nil {
			return m, m.finishGeneration()
		}
		m.rebuildViewportContent()
		return m, listenForGeneration(m.genEvents)

	case generationEndedMsg:
		return m, m.finishGeneration()

	case historyListMsg:
		m.state = StateInput
		m.lastListing = msg.listing.Summaries
		m.systemNote(m.renderHistoryListing(msg.listing))
		return m, m.input.Focus()

	case conversationLoadedMsg:
		m.state = StateInput
		if msg.err != nil {
			m.systemNote("Could not load that conversation: " + msg.err.Error())
			return m, m.input.Focus()
		}
		m.controller.Restore(msg.conv)
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// finishGeneration releases generation resources and returns to input.
func (m *Model) finishGeneration() tea.Cmd {
	m.state = StateInput
	if m.genCancel != nil {
		m.genCancel()
		m.genCancel = nil
	}
	m.genEvents = nil
	m.rebuildViewportContent()
	m.viewport.GotoBottom()
	return m.input.Focus()
}

// View implements tea.Model.
// Uses AltScreen with viewport for scrollable conversation history.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderStatusBar())

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the viewport content from the
// session snapshot. Called when the session, generation state, or
// dimensions change.
func (m *Model) rebuildViewportContent() {
	session := m.controller.Snapshot()

	var b strings.Builder

	_, _ = b.WriteString(m.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	if len(session.Messages) == 0 {
		_, _ = b.WriteString(m.styles.RenderWelcomeTips())
		_, _ = b.WriteString("\n")
	}

	for _, msg := range session.Messages {
		switch msg.Role {
		case content.RoleUser:
			_, _ = b.WriteString(m.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Content)
		case content.RoleAssistant:
			_, _ = b.WriteString(m.styles.Assistant.Render(m.assistantPrefix(msg)))
			_, _ = b.WriteString(m.markdown.Render(msg.Content))
		}
		_, _ = b.WriteString("\n\n")
	}

	// Stage panel below the transcript
	_, _ = b.WriteString(m.renderStagePanel(session))

	// Generation progress
	if m.state == StateGenerating {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(" ")
		status := session.StatusLine
		if status == "" {
			status = "Generating..."
		}
		_, _ = b.WriteString(m.styles.System.Render(status))
		_, _ = b.WriteString("\n\n")
	} else if m.state == StateBusy {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(m.styles.System.Render(" Thinking..."))
		_, _ = b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

// assistantPrefix labels assistant turns by the agent that produced them.
func (m *Model) assistantPrefix(msg content.ChatMessage) string {
	if msg.Agent != "" {
		return "AdCraft (" + msg.Agent + ")> "
	}
	return "AdCraft> "
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help with the
// current workflow stage.
func (m *Model) renderStatusBar() string {
	stage := m.styles.StatusBar.Render("[" + m.controller.Snapshot().Stage.String() + "] ")

	var bindings []key.Binding
	switch m.state {
	case StateInput:
		bindings = []key.Binding{
			m.keys.Submit, m.keys.NewLine, m.keys.History,
			m.keys.Cancel, m.keys.Quit, m.keys.ScrollUp,
		}
	case StateBusy, StateGenerating:
		bindings = []key.Binding{
			m.keys.EscCancel, m.keys.Cancel,
			m.keys.ScrollUp, m.keys.ScrollDown,
		}
	}
	return stage + m.help.ShortHelpView(bindings)
}
