package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"chat", "ask", "conversations", "products", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestConversationsSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range conversationsCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"list", "show", "rename", "delete"} {
		assert.True(t, names[want], "missing conversations subcommand %q", want)
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "unknown", formatTime(time.Time{}))
	assert.Equal(t, "just now", formatTime(now.Add(-30*time.Second)))
	assert.Equal(t, "5 minutes ago", formatTime(now.Add(-5*time.Minute)))
	assert.Equal(t, "3 hours ago", formatTime(now.Add(-3*time.Hour)))
	assert.Equal(t, "2 days ago", formatTime(now.Add(-48*time.Hour)))

	old := now.Add(-30 * 24 * time.Hour)
	assert.Equal(t, old.Format("2006-01-02 15:04"), formatTime(old))
}
