package redis

import (
	"context"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryRepositories is an in-process IRedisRepositories used when no Redis
// host is configured. Expiry is checked lazily on read.
type MemoryRepositories struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRepositories() *MemoryRepositories {
	return &MemoryRepositories{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryRepositories) Set(key string, data []byte, expiredTime time.Duration, _ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{data: append([]byte(nil), data...)}
	if expiredTime > 0 {
		entry.expiresAt = m.now().Add(expiredTime)
	}
	m.entries[key] = entry
	return nil
}

func (m *MemoryRepositories) Get(key string, _ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), entry.data...), nil
}

func (m *MemoryRepositories) Del(key string, _ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryRepositories) Expire(key string, expiredTime time.Duration, _ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok {
		return nil
	}
	entry.expiresAt = m.now().Add(expiredTime)
	m.entries[key] = entry
	return nil
}

// TTL follows Redis: -2 for a missing key, -1 for a key without expiry.
func (m *MemoryRepositories) TTL(key string, _ context.Context) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(key)
	if !ok {
		return -2, nil
	}
	if entry.expiresAt.IsZero() {
		return -1, nil
	}
	return entry.expiresAt.Sub(m.now()), nil
}

func (m *MemoryRepositories) ScanKeys(pattern string, _ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.entries {
		if _, ok := m.live(key); !ok {
			continue
		}
		if matched, _ := path.Match(pattern, key); matched {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *MemoryRepositories) live(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
