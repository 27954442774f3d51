package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a one-shot chat message and stream the reply",
	Long: `Sends a single message to the AdCraft chat endpoint and streams the
agent responses to stdout. Useful for scripting and quick questions
without entering the interactive studio.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	message := strings.Join(args, " ")
	events, err := rt.client.StreamChat(cmd.Context(), message, uuid.NewString())
	if err != nil {
		return fmt.Errorf("starting chat stream: %w", err)
	}

	var lastAgent string
	for ev := range events {
		if ev.Err != nil {
			return fmt.Errorf("chat stream: %w", ev.Err)
		}
		if ev.Response == nil {
			continue
		}
		if ev.Response.Agent != "" && ev.Response.Agent != lastAgent {
			lastAgent = ev.Response.Agent
			fmt.Printf("[%s]\n", ev.Response.Agent)
		}
		fmt.Println(ev.Response.Content)
	}
	return nil
}
