package session

import (
	"context"
	"sync"
)

// Persister is durable key/value storage for session entries. SaveAll must
// write every entry or none of them.
type Persister interface {
	Load(ctx context.Context, keys ...string) (map[string]string, error)
	SaveAll(ctx context.Context, entries map[string]string) error
	DeleteAll(ctx context.Context, keys ...string) error
}

// MemoryPersister keeps entries for the lifetime of the process.
type MemoryPersister struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{entries: make(map[string]string)}
}

func (m *MemoryPersister) Load(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.entries[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryPersister) SaveAll(_ context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}

func (m *MemoryPersister) DeleteAll(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
