package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory BlobStore. It is safe for concurrent use and
// is intended for tests and local runs without cloud credentials.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	meta  map[string]WriteOptions
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
		meta:  make(map[string]WriteOptions),
	}
}

// Write stores a copy of data under name, overwriting any existing entry.
func (s *MemoryStore) Write(_ context.Context, name string, data []byte, opts WriteOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[name] = buf
	s.meta[name] = opts
	return nil
}

// Read returns the bytes stored under name.
func (s *MemoryStore) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("blob %q not found", name)
	}
	return data, nil
}

// List returns the sorted names of all blobs under prefix.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Options returns the metadata recorded for a blob, for assertions in tests.
func (s *MemoryStore) Options(name string) (WriteOptions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts, ok := s.meta[name]
	return opts, ok
}

var _ BlobStore = (*MemoryStore)(nil)
