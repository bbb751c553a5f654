// Package memory keeps local storage in process memory. Items vanish on
// restart; it backs tests and the "memory" storage backend.
package memory

import (
	"context"
	"sync"

	"github.com/aanand-mishra/ugs-portal/internal/storage"
)

var _ storage.Storage = (*Memory)(nil)

type Memory struct {
	mu    sync.RWMutex
	items map[string]map[string]string // profile -> key -> value
}

func New() *Memory {
	return &Memory{items: make(map[string]map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, profile, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[profile][key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, profile, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[profile]
	if !ok {
		p = make(map[string]string)
		m.items[profile] = p
	}
	p[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, profile, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.items[profile]; ok {
		delete(p, key)
		if len(p) == 0 {
			delete(m.items, profile)
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
