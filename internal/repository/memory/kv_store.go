// Package memory holds a process-local key-value store. It does not survive
// restarts and is meant for development runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

type kvStore struct {
	mu    sync.RWMutex
	items map[string]string
}

var (
	_ domain.KeyValueStore = (*kvStore)(nil)
	_ domain.Swapper       = (*kvStore)(nil)
)

// NewKVStore creates an empty in-memory store.
func NewKVStore() domain.KeyValueStore {
	return &kvStore{items: make(map[string]string)}
}

func (s *kvStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *kvStore) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
	return nil
}

func (s *kvStore) CompareAndSwap(ctx context.Context, key, old string, oldFound bool, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[key]
	if ok != oldFound || current != old {
		return false, nil
	}
	s.items[key] = value
	return true, nil
}
