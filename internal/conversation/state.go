package conversation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	stateDir  = ".adcraft"
	stateFile = "current_conversation"
	lockFile  = "current_conversation.lock"
)

// stateFilePath returns the full path to the current-conversation state
// file under baseDir (the user's home when baseDir is empty), creating the
// .adcraft directory if needed.
func stateFilePath(baseDir string) (string, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		baseDir = home
	}

	dir := filepath.Join(baseDir, stateDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}

	return filepath.Join(dir, stateFile), nil
}

// withStateLock runs fn while holding an exclusive advisory lock next to
// the state file, so two adcraft processes can't interleave reads and
// writes of the current-conversation id.
func withStateLock(path string, fn func() error) error {
	lock := flock.New(filepath.Join(filepath.Dir(path), lockFile))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire state lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// LoadCurrentConversationID loads the active conversation id from the
// state file under baseDir ("" = home). Returns ("", nil) when no state
// file exists; a missing current conversation is not an error.
func LoadCurrentConversationID(baseDir string) (string, error) {
	path, err := stateFilePath(baseDir)
	if err != nil {
		return "", err
	}

	var id string
	err = withStateLock(path, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("read state file: %w", err)
		}

		raw := strings.TrimSpace(string(data))
		if raw == "" {
			return nil
		}
		if _, err := uuid.Parse(raw); err != nil {
			return fmt.Errorf("invalid conversation id in state file: %w", err)
		}
		id = raw
		return nil
	})
	return id, err
}

// SaveCurrentConversationID records id as the active conversation.
func SaveCurrentConversationID(baseDir, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid conversation id: %w", err)
	}

	path, err := stateFilePath(baseDir)
	if err != nil {
		return err
	}

	return withStateLock(path, func() error {
		if err := os.WriteFile(path, []byte(id), 0o640); err != nil {
			return fmt.Errorf("write state file: %w", err)
		}
		return nil
	})
}

// ClearCurrentConversationID removes the state file. Idempotent: clearing
// when no current conversation exists is not an error.
func ClearCurrentConversationID(baseDir string) error {
	path, err := stateFilePath(baseDir)
	if err != nil {
		return err
	}

	return withStateLock(path, func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove state file: %w", err)
		}
		return nil
	})
}
