package store

import (
	"context"
	"sync"
)

// Compile-time interface check
var _ KV = (*MemoryKV)(nil)

// MemoryKV keeps values in process memory. Used by tests and ephemeral runs.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
	puts   int
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	m.puts++
	return nil
}

// Puts reports how many writes have been made.
func (m *MemoryKV) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

func (m *MemoryKV) Close() error { return nil }
