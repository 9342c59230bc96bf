package storage

import (
	"context"
	"sync"

	"vaultIndexer/internal/entity"
)

// MemoryStore keeps entities in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[entity.Kind]map[string]entity.Attributes
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[entity.Kind]map[string]entity.Attributes)}
}

func (s *MemoryStore) Save(_ context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.data[kind]
	if !ok {
		byID = make(map[string]entity.Attributes)
		s.data[kind] = byID
	}
	byID[id.Hex()] = cloneAttributes(attrs)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, kind entity.Kind, id entity.ID) (entity.Attributes, bool, error) {
	s.mu.RLock()
	attrs, ok := s.data[kind][id.Hex()]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return cloneAttributes(attrs), true, nil
}

func (s *MemoryStore) Count(_ context.Context, kind entity.Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[kind]), nil
}

// Clear drops every entity.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.data = make(map[entity.Kind]map[string]entity.Attributes)
	s.mu.Unlock()
}
