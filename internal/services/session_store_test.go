package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-genie/internal/models"
	"query-genie/pkg/sqlguard"
)

func TestSessionStorePendingSlot(t *testing.T) {
	store := NewSessionStore()

	err := store.SetPending("s1", models.NewPendingConfirmation(sqlguard.Classify("DROP TABLE a")))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.Reset("s1", models.Connection{Type: "mysql", Host: "h", Database: "d"})
	require.NoError(t, store.SetPending("s1", models.NewPendingConfirmation(sqlguard.Classify("DROP TABLE a"))))
	require.NoError(t, store.SetPending("s1", models.NewPendingConfirmation(sqlguard.Classify("DROP TABLE b"))))

	pending, ok := store.Pending("s1")
	require.True(t, ok)
	assert.Equal(t, "DROP TABLE b", pending.SQL)
	assert.Equal(t, []sqlguard.DangerKeyword{sqlguard.KeywordDrop}, pending.DangerKeywords)

	taken, ok := store.TakePending("s1")
	require.True(t, ok)
	assert.Equal(t, "DROP TABLE b", taken.SQL)

	_, ok = store.TakePending("s1")
	assert.False(t, ok)
}

func TestSessionStoreResetDropsPending(t *testing.T) {
	store := NewSessionStore()
	store.Reset("s1", models.Connection{Database: "one"})
	require.NoError(t, store.SetPending("s1", models.NewPendingConfirmation(sqlguard.Classify("DELETE FROM t"))))

	store.Reset("s1", models.Connection{Database: "two"})
	_, ok := store.Pending("s1")
	assert.False(t, ok)

	conn, err := store.Connection("s1")
	require.NoError(t, err)
	assert.Equal(t, "two", conn.Database)

	store.Delete("s1")
	assert.Equal(t, 0, store.Len())
}
