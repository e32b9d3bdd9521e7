package memory

import (
	"context"
	"testing"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/storage"
	"github.com/tjfontaine/autodiag/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.RunHistoryStoreTests(t, func(t *testing.T) storage.HistoryStore {
		return New()
	})
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.AppendHistory(ctx, "ws", domain.HistoryEntry{ID: "a"}); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}
	got, _ := store.ListHistory(ctx, "ws", storage.ListOptions{})
	got[0].ID = "mutated"

	again, _ := store.ListHistory(ctx, "ws", storage.ListOptions{})
	if again[0].ID != "a" {
		t.Errorf("stored entry was mutated through ListHistory result: %q", again[0].ID)
	}
}
