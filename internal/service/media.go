package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ObjectStore is the interface for binary object storage used for trip
// product photos. It is an external collaborator; lifecycle correctness
// never depends on it.
type ObjectStore interface {
	// Upload stores the bytes and returns an object key.
	Upload(ctx context.Context, data []byte, mimeType string) (string, error)

	// SignedURL returns a time-limited read URL for an object key.
	SignedURL(ctx context.Context, key string) (string, error)
}

// MemoryObjectStore is an in-process ObjectStore used in development and
// tests. A real deployment substitutes an S3-compatible implementation.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryObjectStore creates a new MemoryObjectStore.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string][]byte)}
}

// Upload stores the bytes under a generated key.
func (s *MemoryObjectStore) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	key := "objects/" + uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data

	return key, nil
}

// SignedURL returns a pseudo-URL for the stored object.
func (s *MemoryObjectStore) SignedURL(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return "memory://" + key, nil
}

var _ ObjectStore = (*MemoryObjectStore)(nil)
