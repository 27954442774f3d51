package conversation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentConversationID_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	id := uuid.NewString()

	require.NoError(t, SaveCurrentConversationID(dir, id))

	got, err := LoadCurrentConversationID(dir)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	// Saving again overwrites.
	next := uuid.NewString()
	require.NoError(t, SaveCurrentConversationID(dir, next))
	got, err = LoadCurrentConversationID(dir)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestLoadCurrentConversationID_MissingFileIsNotAnError(t *testing.T) {
	got, err := LoadCurrentConversationID(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadCurrentConversationID_InvalidContent(t *testing.T) {
	dir := t.TempDir()
	path, err := stateFilePath(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not-a-uuid"), 0o640))

	_, err = LoadCurrentConversationID(dir)
	assert.Error(t, err)
}

func TestLoadCurrentConversationID_WhitespaceOnlyFile(t *testing.T) {
	dir := t.TempDir()
	path, err := stateFilePath(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o640))

	got, err := LoadCurrentConversationID(dir)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveCurrentConversationID_RejectsInvalidID(t *testing.T) {
	assert.Error(t, SaveCurrentConversationID(t.TempDir(), "session-42"))
}

func TestClearCurrentConversationID_Idempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveCurrentConversationID(dir, uuid.NewString()))

	require.NoError(t, ClearCurrentConversationID(dir))
	require.NoError(t, ClearCurrentConversationID(dir), "clearing twice is fine")

	got, err := LoadCurrentConversationID(dir)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, statErr := os.Stat(filepath.Join(dir, stateDir, stateFile))
	assert.True(t, os.IsNotExist(statErr))
}
