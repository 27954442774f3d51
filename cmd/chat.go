package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/adcraftlabs/adcraft/internal/conversation"
	"github.com/adcraftlabs/adcraft/internal/history"
	"github.com/adcraftlabs/adcraft/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive content studio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// runChat initializes and starts the interactive Bubble Tea TUI.
func runChat(parent context.Context) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	controller, err := conversation.NewController(rt.client, rt.cfg.GenerateImages, rt.logger)
	if err != nil {
		return fmt.Errorf("creating conversation controller: %w", err)
	}

	gateway, err := history.NewGateway(rt.client, rt.logger)
	if err != nil {
		return fmt.Errorf("creating history gateway: %w", err)
	}

	// Resume the previous conversation if one is recorded and the server
	// still has it; anything else starts fresh.
	if err := restorePrevious(ctx, controller, gateway, rt.cfg.StateDir); err != nil {
		rt.logger.Warn("could not restore previous conversation", "error", err)
	}

	model, err := tui.New(ctx, controller, gateway, rt.logger)
	if err != nil {
		return fmt.Errorf("creating TUI: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("TUI exited: %w", err)
	}

	// Record the active conversation for next launch.
	if saveErr := conversation.SaveCurrentConversationID(rt.cfg.StateDir, controller.ConversationID()); saveErr != nil {
		rt.logger.Warn("could not save conversation state", "error", saveErr)
	}
	return nil
}

// restorePrevious loads the recorded conversation id, validates it against
// the server, and restores the session. A stale or missing id is cleared,
// not fatal.
func restorePrevious(ctx context.Context, controller *conversation.Controller, gateway *history.Gateway, stateDir string) error {
	id, err := conversation.LoadCurrentConversationID(stateDir)
	if err != nil || id == "" {
		return err
	}

	conv, err := gateway.Get(ctx, id)
	if err != nil {
		_ = conversation.ClearCurrentConversationID(stateDir)
		return err
	}

	controller.Restore(conv)
	return nil
}
