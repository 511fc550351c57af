package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"query-genie/internal/apis/dtos"
)

// maxStoredMessages bounds the history file. The server only reads the most
// recent few, the rest is kept for the user's own scrollback.
const maxStoredMessages = 50

// History is the local chat context sent with every question.
type History struct {
	path string
}

func NewHistory(stateDir string) *History {
	return &History{path: filepath.Join(stateDir, "history.json")}
}

func (h *History) Load() ([]dtos.ChatMessage, error) {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return []dtos.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []dtos.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("corrupt history file %s: %w", h.path, err)
	}
	return messages, nil
}

func (h *History) Append(messages ...dtos.ChatMessage) error {
	existing, err := h.Load()
	if err != nil {
		return err
	}
	existing = append(existing, messages...)
	if len(existing) > maxStoredMessages {
		existing = existing[len(existing)-maxStoredMessages:]
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0o600)
}

func (h *History) Clear() error {
	err := os.Remove(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
