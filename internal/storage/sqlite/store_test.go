package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/storage"
	"github.com/tjfontaine/autodiag/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	storagetest.RunHistoryStoreTests(t, func(t *testing.T) storage.HistoryStore {
		return newTestStore(t)
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	entry := domain.HistoryEntry{
		ID:     "persisted",
		Result: domain.DiagnosticResult{Analysis: "kept", Urgency: domain.UrgencyLow},
	}
	if err := store.AppendHistory(ctx, "ws", entry); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetHistory(ctx, "ws", "persisted")
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if got.Result.Analysis != "kept" {
		t.Errorf("Result.Analysis = %q, want kept", got.Result.Analysis)
	}
	if got.Codes == nil || got.Symptoms == nil {
		t.Errorf("nil slices after round trip: codes=%v symptoms=%v", got.Codes, got.Symptoms)
	}
}
