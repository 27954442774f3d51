// Package cmd wires the adcraft CLI. Running adcraft with no subcommand
// starts the interactive chat TUI.
package cmd

import (
	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "adcraft",
	Short: "AdCraft - conversational marketing content studio",
	Long: `AdCraft turns a plain-language campaign description into a structured
creative brief, helps you pick the products to feature, and generates
reviewed marketing copy and imagery through the AdCraft agent backend.

Running adcraft with no arguments starts the interactive chat.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"configuration directory (default ~/.adcraft)")
}
