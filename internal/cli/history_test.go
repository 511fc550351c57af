package cli

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-genie/internal/apis/dtos"
)

func TestHistory(t *testing.T) {
	h := NewHistory(t.TempDir())

	messages, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, messages)

	require.NoError(t, h.Append(
		dtos.ChatMessage{Role: "human", Content: "how many users?"},
		dtos.ChatMessage{Role: "ai", Content: "SELECT COUNT(*) FROM users"},
	))
	messages, err = h.Load()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "human", messages[0].Role)

	require.NoError(t, h.Clear())
	messages, err = h.Load()
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NoError(t, h.Clear())
}

func TestHistoryIsBounded(t *testing.T) {
	h := NewHistory(t.TempDir())
	for i := 0; i < maxStoredMessages+10; i++ {
		require.NoError(t, h.Append(dtos.ChatMessage{Role: "human", Content: fmt.Sprintf("q%d", i)}))
	}

	messages, err := h.Load()
	require.NoError(t, err)
	require.Len(t, messages, maxStoredMessages)
	assert.Equal(t, "q10", messages[0].Content)
}

func TestHistoryCorruptFile(t *testing.T) {
	dir := t.TempDir()
	h := NewHistory(dir)
	require.NoError(t, os.WriteFile(h.path, []byte("{not json"), 0o600))

	_, err := h.Load()
	assert.Error(t, err)
}
