package storage

import (
	"context"
	"sync"
)

// Memory keeps the blob in process memory. Nothing survives a restart.
type Memory struct {
	mu   sync.Mutex
	blob string
	set  bool
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, blob string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob, m.set = blob, true
	return nil
}

func (m *Memory) Load(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blob, m.set, nil
}

func (m *Memory) Close() error { return nil }
