package tui

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/adcraftlabs/adcraft/internal/conversation"
	"github.com/adcraftlabs/adcraft/internal/transport"
)

// generationEvent aliases the transport union so message types stay local
// to the package.
type generationEvent = transport.GenerationEvent

// Bubble Tea message types for the generation lifecycle.
type generationStartedMsg struct {
	events <-chan generationEvent
	cancel context.CancelFunc
}

type generationEventMsg struct {
	event generationEvent
}

// generationEndedMsg signals the event channel closed without a terminal
// event (cancellation, or a producer bug).
type generationEndedMsg struct{}

// turnDoneMsg signals a non-generation backend turn finished. The
// controller already folded the outcome into the session; note carries an
// optional guard hint that never reached the backend.
type turnDoneMsg struct {
	err  error
	note string
}

// startGeneration triggers a generation run through the controller.
// Guard failures surface as hints; an in-flight run makes the trigger a
// no-op per the single-generation rule.
func (m *Model) startGeneration() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)

	events, err := m.controller.Generate(ctx)
	if err != nil {
		cancel()
		switch {
		case errors.Is(err, conversation.ErrBriefNotConfirmed):
			m.systemNote("Confirm a brief before generating. Type /help for the workflow.")
		case errors.Is(err, conversation.ErrNoProductsSelected):
			m.systemNote("Select at least one product first, e.g. \"add the sage green paint\".")
		case errors.Is(err, conversation.ErrGenerationInFlight):
			// Ignore the second trigger; the first run keeps going.
		default:
			m.systemNote("Could not start generation: " + err.Error())
		}
		return m, nil
	}

	return m, func() tea.Msg {
		return generationStartedMsg{events: events, cancel: cancel}
	}
}

// listenForGeneration creates a command that waits for the next generation
// event. One event per command keeps the Bubble Tea loop responsive.
func listenForGeneration(events <-chan generationEvent) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return generationEndedMsg{}
		}
		event, ok := <-events
		if !ok {
			return generationEndedMsg{}
		}
		return generationEventMsg{event: event}
	}
}
