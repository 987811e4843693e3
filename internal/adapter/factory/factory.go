package factory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// kvStoreFactory is a thread-safe registry of key-value backends
// ensuring each backend name resolves to a concrete opener.
type kvStoreFactory struct {
	mu      sync.RWMutex
	openers map[string]domain.KeyValueStoreOpener
}

// NewKVStoreFactory creates an empty backend registry.
func NewKVStoreFactory() domain.KeyValueStoreFactory {
	return &kvStoreFactory{
		openers: make(map[string]domain.KeyValueStoreOpener),
	}
}

// RegisterBackend registers an opener under the given backend name.
func (f *kvStoreFactory) RegisterBackend(name string, opener domain.KeyValueStoreOpener) {
	if opener == nil {
		return
	}

	normalized := normalize(name)
	if normalized == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.openers[normalized] = opener
}

// Open opens the backend registered under name.
func (f *kvStoreFactory) Open(ctx context.Context, name string) (domain.KeyValueStore, func() error, error) {
	normalized := normalize(name)
	if normalized == "" {
		return nil, nil, fmt.Errorf("queue backend is required")
	}

	f.mu.RLock()
	opener, ok := f.openers[normalized]
	f.mu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("queue backend %s not registered", normalized)
	}

	store, release, err := opener(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s backend: %w", normalized, err)
	}
	if release == nil {
		release = func() error { return nil }
	}
	return store, release, nil
}

// Backends lists registered backend names in order.
func (f *kvStoreFactory) Backends() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.openers))
	for name := range f.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
