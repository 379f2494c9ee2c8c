package journey

import (
	"context"
	"sync"
)

// MemoryStorage keeps journey states in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: make(map[string]*State)}
}

func memoryKey(product, id string) string {
	return product + "/" + id
}

func (m *MemoryStorage) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[memoryKey(state.Product, state.ID)] = state.Clone()
	return nil
}

func (m *MemoryStorage) Load(_ context.Context, product, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[memoryKey(product, id)]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *MemoryStorage) Delete(_ context.Context, product, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, memoryKey(product, id))
	return nil
}
