package persist

import (
	"context"
	"encoding/json"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory keeps snapshots in a map. It backs tests and sessions that opt out
// of durable storage.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, scope string, partition Partition, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data[Key(scope, partition)] = b
	m.mu.Unlock()

	return nil
}

func (m *Memory) Load(_ context.Context, scope string, partition Partition, out any) error {
	m.mu.RLock()
	b, ok := m.data[Key(scope, partition)]
	m.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(b, out)
}

func (m *Memory) Delete(_ context.Context, scope string, partition Partition) error {
	m.mu.Lock()
	delete(m.data, Key(scope, partition))
	m.mu.Unlock()

	return nil
}
