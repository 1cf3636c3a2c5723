// Package storage provides key-value storage engines for authclient.
package storage

import (
	"context"
	"sync"
)

// MemoryEngine is an in-memory KVEngine. Contents are lost on Close.
type MemoryEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

// GetMany retrieves several keys under one read lock.
func (m *MemoryEngine) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

// Apply commits the batch under one write lock.
func (m *MemoryEngine) Apply(ctx context.Context, b *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for _, op := range b.Ops() {
		switch op.Kind {
		case OpSet:
			m.data[op.Key] = append([]byte(nil), op.Value...)
		case OpDelete:
			delete(m.data, op.Key)
		}
	}
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryEngine) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close drops all data.
func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}
