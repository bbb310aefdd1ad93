package db

import (
	"context"
	"sync"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
)

// MemoryStore keeps a private copy of the last saved snapshot. Useful for
// tests and for running without any durable backend.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot []models.StoredResponse
	saves    int
}

var _ services.SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore(initial ...models.StoredResponse) *MemoryStore {
	return &MemoryStore{snapshot: cloneSnapshot(initial)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]models.StoredResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snapshot), nil
}

func (s *MemoryStore) Save(ctx context.Context, snapshot []models.StoredResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = cloneSnapshot(snapshot)
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneSnapshot(in []models.StoredResponse) []models.StoredResponse {
	out := make([]models.StoredResponse, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
