package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore implements Store with in-process fixed-window counters.
// Suitable for single-instance deployments and tests; multi-instance
// deployments should use the redis store so counters are shared.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[key]
	if !ok || now.After(entry.windowEnd) {
		entry = memoryEntry{windowEnd: now.Add(window)}
	}
	entry.count++
	m.entries[key] = entry
	return entry.count, nil
}

func (m *MemoryStore) Count(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok || m.now().After(entry.windowEnd) {
		return 0, nil
	}
	return entry.count, nil
}

func (m *MemoryStore) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
