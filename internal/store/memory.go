package store

import (
	"context"
	"encoding/json"
	"sync"

	"minesweeper_webapp/internal/domain"
)

// MemoryStore keeps documents in a process-local map. It is the test
// backend and the fallback for single-node runs without Redis or
// Postgres. Documents are stored as JSON so Load hands out copies,
// matching the isolation of the real backends.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	version int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Load(ctx context.Context, key string) (*domain.GameDocument, int64, error) {
	s.mu.Lock()
	entry, ok := s.docs[key]
	s.mu.Unlock()

	if !ok {
		return nil, 0, ErrNotFound
	}

	var doc domain.GameDocument
	if err := json.Unmarshal(entry.data, &doc); err != nil {
		return nil, 0, err
	}
	return &doc, entry.version, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, doc *domain.GameDocument, expectVersion int64) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if entry, ok := s.docs[key]; ok {
		current = entry.version
	}
	if current != expectVersion {
		return ErrVersionConflict
	}

	s.docs[key] = memoryEntry{data: data, version: current + 1}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() {}
