// Package storagetest holds tests shared by every HistoryStore
// implementation.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/storage"
)

func entry(i int) domain.HistoryEntry {
	mileage := 90000 + i
	return domain.HistoryEntry{
		ID:       fmt.Sprintf("entry-%d", i),
		Date:     time.Date(2024, 5, 1, 12, 0, i, 0, time.UTC),
		Codes:    []domain.DiagnosticCode{},
		Symptoms: []string{fmt.Sprintf("symptom %d", i)},
		Result: domain.DiagnosticResult{
			Analysis:           fmt.Sprintf("analysis %d", i),
			PossibleCauses:     []string{"cause"},
			RecommendedActions: []string{"action"},
			EstimatedCost:      &domain.CostRange{Min: 10, Max: 20},
			Urgency:            domain.UrgencyHigh,
		},
		Vehicle: domain.VehicleInfo{Make: "Toyota", Model: "Camry", Year: 2015, Mileage: &mileage},
	}
}

// RunHistoryStoreTests exercises a HistoryStore created by newStore.
func RunHistoryStoreTests(t *testing.T, newStore func(t *testing.T) storage.HistoryStore) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s := newStore(t)
		got, err := s.ListHistory(ctx, "ws-empty", storage.ListOptions{})
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ListHistory() = %d entries, want 0", len(got))
		}
	})

	t.Run("newest first", func(t *testing.T) {
		s := newStore(t)
		for i := 1; i <= 3; i++ {
			if err := s.AppendHistory(ctx, "ws-1", entry(i)); err != nil {
				t.Fatalf("AppendHistory() error = %v", err)
			}
			n, err := s.CountHistory(ctx, "ws-1")
			if err != nil {
				t.Fatalf("CountHistory() error = %v", err)
			}
			if n != i {
				t.Errorf("CountHistory() = %d, want %d", n, i)
			}
		}
		if err := s.AppendHistory(ctx, "ws-2", entry(9)); err != nil {
			t.Fatalf("AppendHistory() error = %v", err)
		}

		got, err := s.ListHistory(ctx, "ws-1", storage.ListOptions{})
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		want := []domain.HistoryEntry{entry(3), entry(2), entry(1)}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListHistory() mismatch (-want +got):\n%s", diff)
		}

		page, err := s.ListHistory(ctx, "ws-1", storage.ListOptions{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(page) != 1 || page[0].ID != "entry-2" {
			t.Errorf("ListHistory(limit 1, offset 1) = %v", page)
		}
	})

	t.Run("get and delete", func(t *testing.T) {
		s := newStore(t)
		if err := s.AppendHistory(ctx, "ws-3", entry(5)); err != nil {
			t.Fatalf("AppendHistory() error = %v", err)
		}
		got, err := s.GetHistory(ctx, "ws-3", "entry-5")
		if err != nil {
			t.Fatalf("GetHistory() error = %v", err)
		}
		if diff := cmp.Diff(entry(5), got); diff != "" {
			t.Errorf("GetHistory() mismatch (-want +got):\n%s", diff)
		}
		if _, err := s.GetHistory(ctx, "ws-other", "entry-5"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetHistory() from another workspace error = %v, want ErrNotFound", err)
		}

		if err := s.DeleteHistory(ctx, "ws-3"); err != nil {
			t.Fatalf("DeleteHistory() error = %v", err)
		}
		if n, _ := s.CountHistory(ctx, "ws-3"); n != 0 {
			t.Errorf("CountHistory() after delete = %d", n)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		s := newStore(t)
		if err := s.AppendHistory(ctx, "ws-4", entry(1)); err != nil {
			t.Fatalf("AppendHistory() error = %v", err)
		}
		if err := s.AppendHistory(ctx, "ws-4", entry(1)); err == nil {
			t.Error("expected error appending duplicate entry id")
		}
	})
}
