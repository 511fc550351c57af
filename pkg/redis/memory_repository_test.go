package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositories(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepositories()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Set("conn:a", []byte("connected"), time.Minute, ctx))
	require.NoError(t, repo.Set("conn:b", []byte("connected"), 0, ctx))
	require.NoError(t, repo.Set("schema:a", []byte("x"), time.Minute, ctx))

	data, err := repo.Get("conn:a", ctx)
	require.NoError(t, err)
	assert.Equal(t, "connected", string(data))

	ttl, err := repo.TTL("conn:a", ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	ttl, _ = repo.TTL("conn:b", ctx)
	assert.Equal(t, time.Duration(-1), ttl)

	keys, err := repo.ScanKeys("conn:*", ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"conn:a", "conn:b"}, keys)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get("conn:a", ctx)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	ttl, _ = repo.TTL("conn:a", ctx)
	assert.Equal(t, time.Duration(-2), ttl)

	require.NoError(t, repo.Del("conn:b", ctx))
	_, err = repo.Get("conn:b", ctx)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
