package imagestore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in process. Used when no bucket is configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string][]byte
	nextID  int
	// FailUploads/FailDeletes let tests exercise the error paths.
	FailUploads error
	FailDeletes error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: strings.TrimRight(baseURL, "/"), blobs: map[string][]byte{}, nextID: 1}
}

func (s *MemoryStore) Upload(_ context.Context, folder string, data []byte, _ string) (Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUploads != nil {
		return Image{}, s.FailUploads
	}
	id := path.Join(strings.Trim(folder, "/"), fmt.Sprintf("img-%d", s.nextID))
	s.nextID++
	s.blobs[id] = append([]byte(nil), data...)
	return Image{PublicID: id, URL: s.baseURL + "/" + id}, nil
}

func (s *MemoryStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeletes != nil {
		return s.FailDeletes
	}
	delete(s.blobs, publicID)
	return nil
}

func (s *MemoryStore) Has(publicID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[publicID]
	return ok
}
