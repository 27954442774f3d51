package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/conversation"
	"github.com/adcraftlabs/adcraft/internal/history"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage stored conversations",
}

func init() {
	conversationsCmd.AddCommand(newConversationsListCmd())
	conversationsCmd.AddCommand(newConversationsShowCmd())
	conversationsCmd.AddCommand(newConversationsRenameCmd())
	conversationsCmd.AddCommand(newConversationsDeleteCmd())
	rootCmd.AddCommand(conversationsCmd)
}

// withGateway builds the runtime and history gateway, runs fn, and cleans up.
func withGateway(ctx context.Context, fn func(context.Context, *history.Gateway, *runtime) error) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	gateway, err := history.NewGateway(rt.client, rt.logger)
	if err != nil {
		return fmt.Errorf("creating history gateway: %w", err)
	}
	return fn(ctx, gateway, rt)
}

func newConversationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd.Context(), runConversationsList)
		},
	}
}

func runConversationsList(ctx context.Context, gateway *history.Gateway, rt *runtime) error {
	listing := gateway.List(ctx, nil)
	if listing.Retryable {
		return fmt.Errorf("could not reach the backend at %s", rt.cfg.BackendURL)
	}
	if len(listing.Summaries) == 0 {
		fmt.Println("No stored conversations.")
		return nil
	}

	currentID, _ := conversation.LoadCurrentConversationID(rt.cfg.StateDir)
	for _, s := range listing.Summaries {
		marker := " "
		if s.ID == currentID {
			marker = "*"
		}
		fmt.Printf("%s %s  %-48s  %d messages  %s\n",
			marker, s.ID, s.Title, s.MessageCount, formatTime(s.Timestamp))
	}
	return nil
}

func newConversationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a stored conversation's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd.Context(), func(ctx context.Context, gateway *history.Gateway, _ *runtime) error {
				return runConversationsShow(ctx, gateway, args[0])
			})
		},
	}
}

func runConversationsShow(ctx context.Context, gateway *history.Gateway, id string) error {
	conv, err := gateway.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Conversation: %s\n", conv.ID)
	fmt.Printf("Title: %s\n", conv.Title)
	fmt.Printf("Messages: %d\n", len(conv.Messages))
	fmt.Println()

	for _, msg := range conv.Messages {
		role := "You"
		if msg.Role == content.RoleAssistant {
			role = "AdCraft"
			if msg.Agent != "" {
				role = "AdCraft (" + msg.Agent + ")"
			}
		}
		fmt.Printf("%s> %s\n\n", role, msg.Content)
	}
	return nil
}

func newConversationsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <conversation-id> <title>",
		Short: "Rename a stored conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd.Context(), func(ctx context.Context, gateway *history.Gateway, _ *runtime) error {
				if err := gateway.Rename(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Renamed %s to %q\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newConversationsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(cmd.Context(), func(ctx context.Context, gateway *history.Gateway, rt *runtime) error {
				currentID, _ := conversation.LoadCurrentConversationID(rt.cfg.StateDir)
				activeDeleted, err := gateway.Delete(ctx, args[0], currentID)
				if err != nil {
					return err
				}
				if activeDeleted {
					// The next chat launch starts fresh instead of
					// resuming a deleted conversation.
					_ = conversation.ClearCurrentConversationID(rt.cfg.StateDir)
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

// formatTime formats time in a human-readable format.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02 15:04")
	}
}
