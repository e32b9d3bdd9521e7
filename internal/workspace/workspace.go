// Package workspace holds the per-client diagnostic state and the flows that
// tie the matcher, the oracle and conversations together.
//
// A Workspace serialises its own operations, so at most one oracle call is
// outstanding per workspace. Preconditions are checked before the oracle is
// consulted and are reported as *domain.ValidationError.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/autodiag/internal/catalog"
	"github.com/tjfontaine/autodiag/internal/conversation"
	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/events"
	"github.com/tjfontaine/autodiag/internal/matcher"
	"github.com/tjfontaine/autodiag/internal/oracle"
	"github.com/tjfontaine/autodiag/internal/storage"
)

var (
	// ErrIssueNotFound is returned when removing an issue that is not in the
	// working set.
	ErrIssueNotFound = errors.New("issue not found")
	// ErrSymptomNotFound is returned for an unknown symptom id.
	ErrSymptomNotFound = errors.New("symptom not found")
	// ErrSuggestionNotFound is returned for a suggestion index out of range.
	ErrSuggestionNotFound = errors.New("suggestion not found")
	// ErrNoConversation is returned when answering without an active
	// conversation.
	ErrNoConversation = errors.New("no active conversation")
)

// Oracle is what a workspace needs from the oracle client.
type Oracle interface {
	conversation.Oracle
	AnalyzeIssues(ctx context.Context, vehicle domain.VehicleInfo, issues []domain.Issue) (domain.DiagnosticResult, oracle.Outcome)
	AnalyzeSymptoms(ctx context.Context, vehicle domain.VehicleInfo, symptoms []domain.Symptom) (domain.DiagnosticResult, oracle.Outcome)
	AnalyzeFreeText(ctx context.Context, vehicle domain.VehicleInfo, text string) (domain.FreeTextAnalysis, oracle.Outcome)
	ExplainCode(ctx context.Context, code string) (string, oracle.Outcome)
}

// Suggestions is the oracle's reading of a query that matched nothing.
type Suggestions struct {
	Query    string                  `json:"query"`
	Analysis domain.FreeTextAnalysis `json:"analysis"`
	Fallback bool                    `json:"fallback"`
}

// SearchResult reports what a search did to the working set.
type SearchResult struct {
	Mode matcher.Mode `json:"mode"`
	// Added are the issues appended to the working set.
	Added []domain.Issue `json:"added"`
	// Suggestions is set when nothing matched and the oracle was asked.
	Suggestions *Suggestions `json:"suggestions,omitempty"`
}

// Analysis is the result of a completed diagnosis.
type Analysis struct {
	Result   domain.DiagnosticResult `json:"result"`
	Fallback bool                    `json:"fallback"`
	Entry    domain.HistoryEntry     `json:"entry"`
}

// Workspace is one client's diagnostic state.
type Workspace struct {
	id       string
	created  time.Time
	deps     *deps
	lastUsed atomic.Int64

	mu          sync.Mutex
	vehicle     domain.VehicleInfo
	issues      []domain.Issue
	symptoms    []domain.Symptom
	suggestions *Suggestions
	session     *conversation.Session
	// closed is set once the manager has deleted the workspace.
	closed bool
}

type deps struct {
	oracle   Oracle
	history  storage.HistoryStore
	events   events.Publisher
	catalog  []domain.Issue
	maxTurns int
	now      func() time.Time
	logf     func(ctx context.Context, msg string, args ...any)
}

func newWorkspace(id string, d *deps) *Workspace {
	now := d.now()
	w := &Workspace{
		id:       id,
		created:  now,
		deps:     d,
		vehicle:  domain.VehicleInfo{Year: now.Year()},
		issues:   []domain.Issue{},
		symptoms: catalog.Symptoms(),
	}
	w.lastUsed.Store(now.UnixNano())
	return w
}

// ID returns the workspace id.
func (w *Workspace) ID() string { return w.id }

func (w *Workspace) lock() func() {
	w.touch()
	w.mu.Lock()
	return func() {
		w.touch()
		w.mu.Unlock()
	}
}

// acquire locks the workspace for an operation. It fails with ErrNotFound
// once the workspace has been deleted.
func (w *Workspace) acquire() (func(), error) {
	unlock := w.lock()
	if w.closed {
		unlock()
		return nil, ErrNotFound
	}
	return unlock, nil
}

func (w *Workspace) touch() {
	w.lastUsed.Store(w.deps.now().UnixNano())
}

func (w *Workspace) idleSince() time.Time {
	return time.Unix(0, w.lastUsed.Load())
}

// SetVehicle replaces the vehicle information. Make and model may be left
// empty until an analysis needs them.
func (w *Workspace) SetVehicle(v domain.VehicleInfo) (domain.VehicleInfo, error) {
	v.Make = strings.TrimSpace(v.Make)
	v.Model = strings.TrimSpace(v.Model)
	v.Engine = strings.TrimSpace(v.Engine)
	if v.Year != 0 && (v.Year < catalog.MinModelYear || v.Year > w.deps.now().Year()+1) {
		return domain.VehicleInfo{}, domain.NewValidationError("year", fmt.Sprint(v.Year), domain.ErrInvalidYear)
	}
	if v.Mileage != nil && *v.Mileage < 0 {
		return domain.VehicleInfo{}, domain.NewValidationError("mileage", fmt.Sprint(*v.Mileage), domain.ErrInvalidMileage)
	}

	unlock, err := w.acquire()
	if err != nil {
		return domain.VehicleInfo{}, err
	}
	defer unlock()
	w.vehicle = v
	return v, nil
}

// Search matches query against the canned issues. New matches are added to
// the working set and pending suggestions are cleared. If nothing matches,
// the oracle's free-text analysis is requested exactly once and kept as the
// pending suggestions.
func (w *Workspace) Search(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, domain.NewValidationError("query", query, domain.ErrEmptyQuery)
	}

	unlock, err := w.acquire()
	if err != nil {
		return SearchResult{}, err
	}
	defer unlock()

	res := matcher.Search(query, w.deps.catalog, w.issues)
	if res.Escalate() {
		analysis, out := w.deps.oracle.AnalyzeFreeText(ctx, w.vehicle, query)
		w.suggestions = &Suggestions{Query: query, Analysis: analysis, Fallback: out.Fallback}
		return SearchResult{Mode: matcher.ModeNone, Added: []domain.Issue{}, Suggestions: w.suggestions}, nil
	}
	if len(res.New) == 0 {
		return SearchResult{}, domain.NewValidationError("query", query, domain.ErrAlreadyAdded)
	}

	w.issues = append(w.issues, res.New...)
	w.suggestions = nil
	return SearchResult{Mode: res.Mode, Added: res.New}, nil
}

// AddSuggestion turns the pending suggestion at index into a working issue.
// The suggestion stays available.
func (w *Workspace) AddSuggestion(index int) (domain.Issue, error) {
	unlock, err := w.acquire()
	if err != nil {
		return domain.Issue{}, err
	}
	defer unlock()

	if w.suggestions == nil || index < 0 || index >= len(w.suggestions.Analysis.SuggestedIssues) {
		return domain.Issue{}, ErrSuggestionNotFound
	}
	s := w.suggestions.Analysis.SuggestedIssues[index]
	issue := domain.Issue{
		ID:           w.syntheticID(),
		Category:     s.Category,
		Description:  s.Description,
		Severity:     s.Severity,
		CommonCauses: []string{s.Reasoning},
		Keywords:     []string{},
	}
	w.issues = append(w.issues, issue)
	return issue, nil
}

// syntheticID returns an ai-<unix nanos> id unused in the working set.
func (w *Workspace) syntheticID() string {
	ts := w.deps.now().UnixNano()
	for {
		id := fmt.Sprintf("ai-%d", ts)
		if !slices.ContainsFunc(w.issues, func(i domain.Issue) bool { return i.ID == id }) {
			return id
		}
		ts++
	}
}

// ClearSuggestions drops the pending suggestions.
func (w *Workspace) ClearSuggestions() {
	defer w.lock()()
	w.suggestions = nil
}

// RemoveIssue drops an issue from the working set.
func (w *Workspace) RemoveIssue(id string) error {
	unlock, err := w.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	i := slices.IndexFunc(w.issues, func(is domain.Issue) bool { return is.ID == id })
	if i < 0 {
		return ErrIssueNotFound
	}
	w.issues = slices.Delete(w.issues, i, i+1)
	return nil
}

// AnalyzeIssues diagnoses the working issues and records the result.
func (w *Workspace) AnalyzeIssues(ctx context.Context) (Analysis, error) {
	unlock, err := w.acquire()
	if err != nil {
		return Analysis{}, err
	}
	defer unlock()

	if len(w.issues) == 0 {
		return Analysis{}, domain.NewValidationError("issues", "", domain.ErrNoIssues)
	}
	if err := domain.ValidateVehicle(w.vehicle); err != nil {
		return Analysis{}, err
	}

	issues := slices.Clone(w.issues)
	result, out := w.deps.oracle.AnalyzeIssues(ctx, w.vehicle, issues)

	descriptions := make([]string, len(issues))
	for i, is := range issues {
		descriptions[i] = is.Description
	}
	return w.record(ctx, events.SourceIssues, descriptions, result, out.Fallback)
}

// Symptoms returns the checklist filtered by query and category.
func (w *Workspace) Symptoms(query, category string) []domain.Symptom {
	defer w.lock()()
	return matcher.FilterSymptoms(w.symptoms, query, category)
}

// ToggleSymptom flips the selection of a symptom.
func (w *Workspace) ToggleSymptom(id string) (domain.Symptom, error) {
	unlock, err := w.acquire()
	if err != nil {
		return domain.Symptom{}, err
	}
	defer unlock()

	for i := range w.symptoms {
		if w.symptoms[i].ID == id {
			w.symptoms[i].Selected = !w.symptoms[i].Selected
			return w.symptoms[i], nil
		}
	}
	return domain.Symptom{}, ErrSymptomNotFound
}

// ClearSymptoms unselects every symptom.
func (w *Workspace) ClearSymptoms() {
	defer w.lock()()
	for i := range w.symptoms {
		w.symptoms[i].Selected = false
	}
}

// AnalyzeSymptoms diagnoses the selected symptoms and records the result.
func (w *Workspace) AnalyzeSymptoms(ctx context.Context) (Analysis, error) {
	unlock, err := w.acquire()
	if err != nil {
		return Analysis{}, err
	}
	defer unlock()

	var selected []string
	for _, s := range w.symptoms {
		if s.Selected {
			selected = append(selected, s.Description)
		}
	}
	if len(selected) == 0 {
		return Analysis{}, domain.NewValidationError("symptoms", "", domain.ErrNoSymptoms)
	}
	if err := domain.ValidateVehicle(w.vehicle); err != nil {
		return Analysis{}, err
	}

	result, out := w.deps.oracle.AnalyzeSymptoms(ctx, w.vehicle, slices.Clone(w.symptoms))
	return w.record(ctx, events.SourceSymptoms, selected, result, out.Fallback)
}

// StartConversation begins a guided conversation for a description that
// matches no canned issue. Any active conversation is discarded.
func (w *Workspace) StartConversation(ctx context.Context, description string) (ConversationView, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return ConversationView{}, domain.NewValidationError("description", description, domain.ErrEmptyQuery)
	}

	unlock, err := w.acquire()
	if err != nil {
		return ConversationView{}, err
	}
	defer unlock()

	if res := matcher.Search(description, w.deps.catalog, nil); !res.Escalate() {
		return ConversationView{}, domain.NewValidationError("description", description, domain.ErrMatchedLocally)
	}

	s, _, err := conversation.Start(ctx, w.deps.oracle, w.vehicle, description, w.deps.maxTurns)
	if err != nil {
		return ConversationView{}, err
	}
	w.session = s
	return w.finishIfDone(ctx)
}

// Respond answers the current question of the active conversation. When the
// conversation ends, its diagnosis is recorded and the session is discarded.
func (w *Workspace) Respond(ctx context.Context, optionID string) (ConversationView, error) {
	unlock, err := w.acquire()
	if err != nil {
		return ConversationView{}, err
	}
	defer unlock()

	if w.session == nil {
		return ConversationView{}, ErrNoConversation
	}
	if _, err := w.session.Respond(ctx, w.deps.oracle, optionID); err != nil {
		return ConversationView{}, err
	}
	return w.finishIfDone(ctx)
}

func (w *Workspace) finishIfDone(ctx context.Context) (ConversationView, error) {
	s := w.session
	view := newConversationView(s)
	if !s.Done() {
		return view, nil
	}

	a, err := w.record(ctx, events.SourceConversation, s.Answers(), *s.Result, s.Fallback)
	if err != nil {
		return view, err
	}
	view.Entry = &a.Entry
	w.session = nil
	return view, nil
}

// ResetConversation discards the active conversation without recording
// anything.
func (w *Workspace) ResetConversation() {
	defer w.lock()()
	w.session = nil
}

// History lists the recorded diagnoses, newest first.
func (w *Workspace) History(ctx context.Context, opts storage.ListOptions) ([]domain.HistoryEntry, error) {
	unlock, err := w.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return w.deps.history.ListHistory(ctx, w.id, opts)
}

// HistoryEntry returns a single recorded diagnosis.
func (w *Workspace) HistoryEntry(ctx context.Context, entryID string) (domain.HistoryEntry, error) {
	unlock, err := w.acquire()
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	defer unlock()
	return w.deps.history.GetHistory(ctx, w.id, entryID)
}

// record prepends a history entry and publishes the completion event. The
// caller holds the lock, so a concurrent delete waits for the entry and then
// removes it with the rest of the history.
func (w *Workspace) record(ctx context.Context, source events.Source, symptoms []string, result domain.DiagnosticResult, fallback bool) (Analysis, error) {
	if w.closed {
		return Analysis{}, ErrNotFound
	}
	entry := domain.HistoryEntry{
		ID:       uuid.NewString(),
		Date:     w.deps.now().UTC(),
		Codes:    []domain.DiagnosticCode{},
		Symptoms: symptoms,
		Result:   result,
		Vehicle:  w.vehicle,
	}
	if entry.Symptoms == nil {
		entry.Symptoms = []string{}
	}
	if err := w.deps.history.AppendHistory(ctx, w.id, entry); err != nil {
		return Analysis{}, fmt.Errorf("failed to record history: %w", err)
	}

	ev := events.Event{
		Type:        events.TypeDiagnosisCompleted,
		WorkspaceID: w.id,
		EntryID:     entry.ID,
		Source:      source,
		Urgency:     result.Urgency,
		Fallback:    fallback,
		Vehicle:     w.vehicle,
		Timestamp:   entry.Date,
	}
	if err := w.deps.events.Publish(ctx, ev); err != nil {
		w.deps.logf(ctx, "failed to publish event", "workspace_id", w.id, "entry_id", entry.ID, "error", err.Error())
	}

	return Analysis{Result: result, Fallback: fallback, Entry: entry}, nil
}

// Snapshot returns the current state.
func (w *Workspace) Snapshot(ctx context.Context) (Snapshot, error) {
	unlock, err := w.acquire()
	if err != nil {
		return Snapshot{}, err
	}
	defer unlock()

	n, err := w.deps.history.CountHistory(ctx, w.id)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:           w.id,
		Vehicle:      w.vehicle,
		Issues:       slices.Clone(w.issues),
		Symptoms:     slices.Clone(w.symptoms),
		Suggestions:  w.suggestions,
		HistoryCount: n,
		CreatedAt:    w.created,
		LastUsedAt:   w.idleSince().UTC(),
	}
	for _, s := range w.symptoms {
		if s.Selected {
			snap.SelectedSymptoms++
		}
	}
	if w.session != nil {
		v := newConversationView(w.session)
		snap.Conversation = &v
	}
	return snap, nil
}
