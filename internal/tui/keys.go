package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/adcraftlabs/adcraft/internal/conversation"
)

// Slash command constants.
const (
	cmdHelp       = "/help"
	cmdClear      = "/clear"
	cmdExit       = "/exit"
	cmdQuit       = "/quit"
	cmdConfirm    = "/confirm"
	cmdStartOver  = "/startover"
	cmdGenerate   = "/generate"
	cmdRegenerate = "/regenerate"
	cmdImages     = "/images"
	cmdNew        = "/new"
	cmdHistory    = "/history"
	cmdResume     = "/resume"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	EscCancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		EscCancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, m.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		if m.state == StateInput {
			// Enter without Shift = submit, Shift+Enter = newline
			if k.Mod&tea.ModShift == 0 {
				return m.handleSubmit()
			}
		}

	case tea.KeyUp:
		if m.state == StateInput && m.input.Line() == 0 {
			return m.navigateHistory(-1)
		}

	case tea.KeyDown:
		if m.state == StateInput && m.input.Line() == m.input.LineCount()-1 {
			return m.navigateHistory(1)
		}

	case tea.KeyEscape:
		if m.state == StateGenerating {
			return m.cancelGeneration()
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Typing is always allowed so the next request can be prepared while
	// a turn is in flight; submission is gated on StateInput.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second = quit
	if now.Sub(m.lastCtrlC) < time.Second {
		return m, m.cleanup()
	}
	m.lastCtrlC = now

	switch m.state {
	case StateInput:
		m.input.Reset()
		return m, nil

	case StateGenerating:
		return m.cancelGeneration()

	case StateBusy:
		// The in-flight turn finishes on its own timeout; just note the
		// intent and keep waiting.
		return m, nil
	}

	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.handleSlashCommand(text)
	}

	m.history = append(m.history, text)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)

	m.input.Reset()
	m.state = StateBusy

	return m, tea.Batch(m.spinner.Tick, m.submitText(text))
}

// submitText routes free text by workflow stage: before the brief is
// confirmed it is a brief-authoring turn, afterwards it is a product
// selection request.
func (m *Model) submitText(text string) tea.Cmd {
	session := m.controller.Snapshot()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, turnTimeout)
		defer cancel()

		var err error
		if session.Stage >= conversation.StageBriefConfirmed {
			err = m.controller.Select(ctx, text)
		} else {
			err = m.controller.SendText(ctx, text)
		}
		return turnDoneMsg{err: err}
	}
}

//nolint:gocyclo // One case per command
func (m *Model) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	name, arg := cmd, ""
	if i := strings.IndexByte(cmd, ' '); i > 0 {
		name, arg = cmd[:i], strings.TrimSpace(cmd[i+1:])
	}

	switch name {
	case cmdHelp:
		m.systemNote(helpText())

	case cmdClear:
		m.rebuildViewportContent()
		m.viewport.GotoBottom()

	case cmdConfirm:
		m.state = StateBusy
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := context.WithTimeout(m.ctx, turnTimeout)
			defer cancel()
			err := m.controller.Confirm(ctx)
			if errors.Is(err, conversation.ErrNoPendingBrief) {
				return turnDoneMsg{note: "There's no brief to confirm yet. Describe your campaign first."}
			}
			if errors.Is(err, conversation.ErrEmptyBrief) {
				return turnDoneMsg{note: "The brief is still empty. Add some detail before confirming."}
			}
			return turnDoneMsg{err: err}
		})

	case cmdStartOver:
		m.controller.StartOver()
		m.rebuildViewportContent()
		m.viewport.GotoBottom()

	case cmdGenerate, cmdRegenerate:
		return m.startGeneration()

	case cmdImages:
		on := !m.controller.Snapshot().GenerateImages
		m.controller.SetGenerateImages(on)
		if on {
			m.systemNote("Image generation enabled.")
		} else {
			m.systemNote("Image generation disabled. Only text content will be produced.")
		}

	case cmdNew:
		m.controller.Reset()
		m.rebuildViewportContent()

	case cmdHistory:
		return m.listHistory()

	case cmdResume:
		return m.resumeConversation(arg)

	case cmdExit, cmdQuit:
		return m, m.cleanup()

	default:
		m.systemNote("Unknown command: " + cmd + ". Type /help for the list.")
	}

	return m, nil
}

// systemNote renders a transient hint above the input without touching the
// conversation log.
func (m *Model) systemNote(text string) {
	session := m.controller.Snapshot()
	var b strings.Builder
	_, _ = b.WriteString(m.styles.System.Render(text))
	_, _ = b.WriteString("\n\n")
	_, _ = b.WriteString(m.renderStagePanel(session))
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func helpText() string {
	return strings.Join([]string{
		"Commands:",
		"  " + cmdConfirm + "      confirm the drafted brief",
		"  " + cmdStartOver + "    discard the draft brief and start again",
		"  " + cmdGenerate + "     generate content for the selected products",
		"  " + cmdRegenerate + "   regenerate from the content preview",
		"  " + cmdImages + "       toggle image generation",
		"  " + cmdNew + "          start a new conversation",
		"  " + cmdHistory + "      list stored conversations",
		"  " + cmdResume + " <n>   resume a stored conversation by list number",
		"  " + cmdClear + ", " + cmdHelp + ", " + cmdQuit,
		"",
		"Shortcuts: Enter send · Shift+Enter newline · Esc cancel generation",
		"           Ctrl+C cancel/clear · Ctrl+D exit · PgUp/PgDn scroll",
	}, "\n")
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta

	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}

	return m, nil
}

// cancelGeneration abandons the in-flight run.
func (m *Model) cancelGeneration() (tea.Model, tea.Cmd) {
	if m.genCancel != nil {
		m.genCancel()
		m.genCancel = nil
	}
	m.genEvents = nil
	m.controller.CancelGeneration()
	m.state = StateInput
	m.rebuildViewportContent()
	m.viewport.GotoBottom()
	return m, m.input.Focus()
}

// cleanup cancels any active generation and returns the quit command.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	if m.genCancel != nil {
		m.genCancel()
		m.genCancel = nil
	}
	m.genEvents = nil
	return tea.Quit
}
