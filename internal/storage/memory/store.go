package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/storage"
)

var _ storage.HistoryStore = (*Store)(nil)

// Store is an in-memory implementation of HistoryStore
type Store struct {
	mu      sync.RWMutex
	history map[string][]domain.HistoryEntry
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		history: make(map[string][]domain.HistoryEntry),
	}
}

func (s *Store) AppendHistory(ctx context.Context, workspaceID string, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.history[workspaceID] {
		if e.ID == entry.ID {
			return fmt.Errorf("history entry %s already exists", entry.ID)
		}
	}

	// Stored oldest first; listing reverses.
	s.history[workspaceID] = append(s.history[workspaceID], entry)
	return nil
}

func (s *Store) ListHistory(ctx context.Context, workspaceID string, opts storage.ListOptions) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := slices.Clone(s.history[workspaceID])
	slices.Reverse(entries)
	return storage.Page(entries, opts), nil
}

func (s *Store) CountHistory(ctx context.Context, workspaceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.history[workspaceID]), nil
}

func (s *Store) GetHistory(ctx context.Context, workspaceID, entryID string) (domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.history[workspaceID] {
		if e.ID == entryID {
			return e, nil
		}
	}
	return domain.HistoryEntry{}, fmt.Errorf("history entry %s: %w", entryID, storage.ErrNotFound)
}

func (s *Store) DeleteHistory(ctx context.Context, workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.history, workspaceID)
	return nil
}

func (s *Store) Close() error {
	return nil
}
