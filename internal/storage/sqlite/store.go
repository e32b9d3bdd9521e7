package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/storage"
)

// Store is a SQLite implementation of HistoryStore
type Store struct {
	db *sqlx.DB
}

var _ storage.HistoryStore = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, ":memory:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			workspace_id TEXT NOT NULL,
			date TEXT NOT NULL,
			vehicle TEXT NOT NULL,
			codes TEXT NOT NULL,
			symptoms TEXT NOT NULL,
			result TEXT NOT NULL,
			urgency TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_workspace ON history(workspace_id, seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// historyRow is the stored form of a HistoryEntry. Nested values are JSON.
type historyRow struct {
	ID       string `db:"id"`
	Date     string `db:"date"`
	Vehicle  string `db:"vehicle"`
	Codes    string `db:"codes"`
	Symptoms string `db:"symptoms"`
	Result   string `db:"result"`
}

func (s *Store) AppendHistory(ctx context.Context, workspaceID string, entry domain.HistoryEntry) error {
	vehicle, err := json.Marshal(entry.Vehicle)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle: %w", err)
	}
	codes, err := json.Marshal(nonNil(entry.Codes))
	if err != nil {
		return fmt.Errorf("failed to marshal codes: %w", err)
	}
	symptoms, err := json.Marshal(nonNil(entry.Symptoms))
	if err != nil {
		return fmt.Errorf("failed to marshal symptoms: %w", err)
	}
	result, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `INSERT INTO history (id, workspace_id, date, vehicle, codes, symptoms, result, urgency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID, workspaceID, entry.Date.UTC().Format(time.RFC3339Nano),
		string(vehicle), string(codes), string(symptoms), string(result), string(entry.Result.Urgency),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func (s *Store) ListHistory(ctx context.Context, workspaceID string, opts storage.ListOptions) ([]domain.HistoryEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT id, date, vehicle, codes, symptoms, result FROM history
		WHERE workspace_id = ?
		ORDER BY seq DESC
		LIMIT ? OFFSET ?`

	var rows []historyRow
	if err := s.db.SelectContext(ctx, &rows, query, workspaceID, limit, opts.Offset); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) CountHistory(ctx context.Context, workspaceID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM history WHERE workspace_id = ?`, workspaceID); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

func (s *Store) GetHistory(ctx context.Context, workspaceID, entryID string) (domain.HistoryEntry, error) {
	query := `SELECT id, date, vehicle, codes, symptoms, result FROM history
		WHERE workspace_id = ? AND id = ?`

	var r historyRow
	if err := s.db.GetContext(ctx, &r, query, workspaceID, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HistoryEntry{}, fmt.Errorf("history entry %s: %w", entryID, storage.ErrNotFound)
		}
		return domain.HistoryEntry{}, fmt.Errorf("failed to get history entry: %w", err)
	}
	return r.entry()
}

func (s *Store) DeleteHistory(ctx context.Context, workspaceID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE workspace_id = ?`, workspaceID); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (r historyRow) entry() (domain.HistoryEntry, error) {
	e := domain.HistoryEntry{ID: r.ID}

	date, err := time.Parse(time.RFC3339Nano, r.Date)
	if err != nil {
		return e, fmt.Errorf("failed to parse date of %s: %w", r.ID, err)
	}
	e.Date = date

	for _, f := range []struct {
		name string
		raw  string
		dst  any
	}{
		{"vehicle", r.Vehicle, &e.Vehicle},
		{"codes", r.Codes, &e.Codes},
		{"symptoms", r.Symptoms, &e.Symptoms},
		{"result", r.Result, &e.Result},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return e, fmt.Errorf("failed to unmarshal %s of %s: %w", f.name, r.ID, err)
		}
	}
	return e, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
