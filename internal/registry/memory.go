package registry

import (
	"context"
	"sync"

	"github.com/ruche-hive/ruche/internal/node"
)

// Memory is an in-process Registry used by tests and the "memory" backend.
type Memory struct {
	mu      sync.RWMutex
	records []node.Record
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Add(ctx context.Context, rec node.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *Memory) Get(ctx context.Context, id int) (node.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return node.Record{}, false, nil
}

func (m *Memory) List(ctx context.Context) ([]node.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]node.Record, len(m.records))
	copy(out, m.records)
	sortByID(out)
	return out, nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *Memory) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Registry = (*Memory)(nil)
