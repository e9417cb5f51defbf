package store

import (
	"context"
	"sort"
	"sync"

	"github.com/imamik/psclink/internal/provisioning"
)

// Memory is a process-local Store. Stored records are encoded like the
// durable stores, so callers never share slices or maps with it.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, clusterID string) ([]provisioning.ResourceRecord, error) {
	m.mu.RLock()
	data, ok := m.data[clusterID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decode(clusterID, data)
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, clusterID string, records []provisioning.ResourceRecord) error {
	data, err := encode(clusterID, records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[clusterID] = data
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, clusterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, clusterID)
	return nil
}

// List implements Store.
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
