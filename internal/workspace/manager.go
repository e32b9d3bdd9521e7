package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/autodiag/internal/catalog"
	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/events"
	"github.com/tjfontaine/autodiag/internal/oracle"
	"github.com/tjfontaine/autodiag/internal/storage"
)

// ErrNotFound is returned for an unknown or expired workspace id.
var ErrNotFound = errors.New("workspace not found")

// Options configures a Manager.
type Options struct {
	// IdleTTL expires workspaces unused for this long. Zero disables expiry.
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxTurns      int
	Events        events.Publisher
	Logger        *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Manager owns the live workspaces.
type Manager struct {
	deps     *deps
	history  storage.HistoryStore
	idleTTL  time.Duration
	interval time.Duration
	logger   *slog.Logger

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewManager creates a manager. History is kept in store.
func NewManager(o Oracle, store storage.HistoryStore, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "workspace")
	pub := opts.Events
	if pub == nil {
		pub = events.Discard{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	return &Manager{
		deps: &deps{
			oracle:   o,
			history:  store,
			events:   pub,
			catalog:  catalog.Issues(),
			maxTurns: opts.MaxTurns,
			now:      now,
			logf: func(ctx context.Context, msg string, args ...any) {
				logger.WarnContext(ctx, msg, args...)
			},
		},
		history:    store,
		idleTTL:    opts.IdleTTL,
		interval:   interval,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
	}
}

// Create starts a new empty workspace.
func (m *Manager) Create() *Workspace {
	w := newWorkspace(uuid.NewString(), m.deps)

	m.mu.Lock()
	m.workspaces[w.id] = w
	m.mu.Unlock()

	m.logger.Debug("workspace created", slog.String("workspace_id", w.id))
	return w
}

// Get returns a live workspace.
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.RLock()
	w, ok := m.workspaces[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

// Delete removes a workspace and its history. It waits for an operation in
// progress on the workspace, so a diagnosis being recorded is deleted too.
func (m *Manager) Delete(ctx context.Context, id string) error {
	_, err := m.remove(ctx, id, nil)
	return err
}

// remove deletes the workspace if keep is nil or returns false for it. keep
// runs with the workspace locked.
func (m *Manager) remove(ctx context.Context, id string, keep func(*Workspace) bool) (bool, error) {
	m.mu.RLock()
	w, ok := m.workspaces[id]
	m.mu.RUnlock()
	if !ok {
		return false, ErrNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false, ErrNotFound
	}
	if keep != nil && keep(w) {
		return false, nil
	}

	m.mu.Lock()
	delete(m.workspaces, id)
	m.mu.Unlock()
	w.closed = true

	if err := m.history.DeleteHistory(ctx, id); err != nil {
		return true, fmt.Errorf("delete history of %s: %w", id, err)
	}
	return true, nil
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// Sweep removes workspaces idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.idleTTL <= 0 {
		return 0
	}
	cutoff := m.deps.now().Add(-m.idleTTL)

	m.mu.RLock()
	var expired []string
	for id, w := range m.workspaces {
		if w.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range expired {
		// Touched since the scan.
		touched := func(w *Workspace) bool { return !w.idleSince().Before(cutoff) }
		removed, err := m.remove(ctx, id, touched)
		if err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.ErrorContext(ctx, "failed to expire workspace", slog.String("workspace_id", id), slog.String("error", err.Error()))
		}
		if removed {
			n++
		}
	}
	if n > 0 {
		m.logger.InfoContext(ctx, "expired idle workspaces", slog.Int("count", n))
	}
	return n
}

// Run sweeps idle workspaces until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m.idleTTL <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Explanation is a trouble code explanation.
type Explanation struct {
	Code     string                 `json:"code"`
	Known    *domain.DiagnosticCode `json:"known,omitempty"`
	Text     string                 `json:"explanation"`
	Fallback bool                   `json:"fallback"`
}

// ExplainCode asks the oracle to explain a trouble code. Codes missing from
// the catalog are still explained.
func (m *Manager) ExplainCode(ctx context.Context, code string) (Explanation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Explanation{}, domain.NewValidationError("code", code, domain.ErrEmptyQuery)
	}
	text, out := m.deps.oracle.ExplainCode(ctx, code)
	exp := Explanation{Code: code, Text: text, Fallback: out.Fallback}
	if c, ok := catalog.LookupCode(code); ok {
		exp.Known = &c
	}
	return exp, nil
}

var _ Oracle = (*oracle.Client)(nil)
