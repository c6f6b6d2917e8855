// internal/domain/cursor/store.go
package cursor

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no cursor has been saved yet.
var ErrNotFound = errors.New("poll cursor not found")

// Store keeps the from_date cursor (Unix seconds) between polls.
type Store interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, fromDate int64) error
}

// MemoryStore holds the cursor for the lifetime of the process only.
type MemoryStore struct {
	mu       sync.Mutex
	fromDate int64
	saved    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return 0, ErrNotFound
	}
	return s.fromDate, nil
}

func (s *MemoryStore) Save(_ context.Context, fromDate int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fromDate = fromDate
	s.saved = true
	return nil
}
