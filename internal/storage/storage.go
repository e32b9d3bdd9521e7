// Package storage defines where completed diagnoses are kept.
package storage

import (
	"context"
	"errors"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("not found")

// ListOptions pages through a workspace's history.
type ListOptions struct {
	Limit  int
	Offset int
}

// HistoryStore keeps the diagnosis history of each workspace. Entries are
// append-only and listed newest first.
type HistoryStore interface {
	AppendHistory(ctx context.Context, workspaceID string, entry domain.HistoryEntry) error
	ListHistory(ctx context.Context, workspaceID string, opts ListOptions) ([]domain.HistoryEntry, error)
	CountHistory(ctx context.Context, workspaceID string) (int, error)
	GetHistory(ctx context.Context, workspaceID, entryID string) (domain.HistoryEntry, error)
	// DeleteHistory drops a workspace's entries when the workspace goes away.
	DeleteHistory(ctx context.Context, workspaceID string) error
	Close() error
}

// Page applies opts to a slice that is already newest first.
func Page[T any](items []T, opts ListOptions) []T {
	start := opts.Offset
	if start >= len(items) {
		return []T{}
	}
	end := start + opts.Limit
	if opts.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
