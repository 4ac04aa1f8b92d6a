package memory

import (
	"context"
	"sync"

	"github.com/jmcampos/tienda/internal/orders/ports"
)

// Store retains placement responses for replaying duplicate requests.
type Store struct {
	mu    sync.RWMutex
	items map[string]ports.StoredResponse
}

func NewStore() *Store {
	return &Store{items: make(map[string]ports.StoredResponse)}
}

func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	stored := value
	return &stored, nil
}

func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = response
	return nil
}
