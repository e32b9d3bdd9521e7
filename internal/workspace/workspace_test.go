package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/autodiag/internal/conversation"
	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/events"
	"github.com/tjfontaine/autodiag/internal/oracle"
	"github.com/tjfontaine/autodiag/internal/storage"
	"github.com/tjfontaine/autodiag/internal/storage/memory"
	"github.com/tjfontaine/autodiag/internal/tokens"
)

// fakeOracle counts calls per operation and returns canned payloads.
type fakeOracle struct {
	mu     sync.Mutex
	calls  map[string]int
	result domain.DiagnosticResult
	free   domain.FreeTextAnalysis
	turns  []domain.ConversationTurn
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		calls: make(map[string]int),
		result: domain.DiagnosticResult{
			Analysis:           "Low oil",
			PossibleCauses:     []string{"oil"},
			RecommendedActions: []string{"top up"},
			Urgency:            domain.UrgencyMedium,
		},
		free: domain.FreeTextAnalysis{
			Analysis: "Sounds like a belt",
			SuggestedIssues: []domain.SuggestedIssue{
				{Description: "Worn serpentine belt", Category: "Engine", Severity: domain.SeverityMedium, Reasoning: "Warbling at idle"},
			},
			ClarifyingQuestions: []string{"When does it happen?"},
		},
	}
}

func (f *fakeOracle) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeOracle) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeOracle) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeOracle) AnalyzeIssues(ctx context.Context, v domain.VehicleInfo, issues []domain.Issue) (domain.DiagnosticResult, oracle.Outcome) {
	f.count(oracle.OpAnalyzeIssues)
	return f.result, oracle.Outcome{}
}

func (f *fakeOracle) AnalyzeSymptoms(ctx context.Context, v domain.VehicleInfo, s []domain.Symptom) (domain.DiagnosticResult, oracle.Outcome) {
	f.count(oracle.OpAnalyzeSymptoms)
	return f.result, oracle.Outcome{}
}

func (f *fakeOracle) AnalyzeFreeText(ctx context.Context, v domain.VehicleInfo, text string) (domain.FreeTextAnalysis, oracle.Outcome) {
	f.count(oracle.OpAnalyzeFreeText)
	return f.free, oracle.Outcome{}
}

func (f *fakeOracle) ExplainCode(ctx context.Context, code string) (string, oracle.Outcome) {
	f.count(oracle.OpExplainCode)
	return "Explanation of " + code, oracle.Outcome{}
}

func (f *fakeOracle) StartConversation(ctx context.Context, v domain.VehicleInfo, d string) (domain.ConversationTurn, oracle.Outcome) {
	f.count(oracle.OpStartConversation)
	return turn("Q1", 1), oracle.Outcome{}
}

func (f *fakeOracle) ContinueConversation(ctx context.Context, v domain.VehicleInfo, d string, h []domain.Exchange, step int) (domain.ConversationTurn, oracle.Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.calls[oracle.OpContinueConversation]
	f.calls[oracle.OpContinueConversation]++
	if n < len(f.turns) {
		return f.turns[n], oracle.Outcome{}
	}
	return turn(fmt.Sprintf("Q%d", step), step), oracle.Outcome{}
}

func turn(msg string, step int) domain.ConversationTurn {
	return domain.ConversationTurn{
		Message:     msg,
		Options:     []domain.ResponseOption{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}},
		CurrentStep: step,
		TotalSteps:  5,
	}
}

// recordingPublisher keeps published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var camry = domain.VehicleInfo{Make: "Toyota", Model: "Camry", Year: 2015}

type fixture struct {
	oracle *fakeOracle
	pub    *recordingPublisher
	mgr    *Manager
	ws     *Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{oracle: newFakeOracle(), pub: &recordingPublisher{}}
	f.mgr = NewManager(f.oracle, memory.New(), Options{MaxTurns: 5, Events: f.pub})
	f.ws = f.mgr.Create()
	if _, err := f.ws.SetVehicle(camry); err != nil {
		t.Fatalf("SetVehicle() error = %v", err)
	}
	return f
}

func issueIDs(issues []domain.Issue) []string {
	out := []string{}
	for _, i := range issues {
		out = append(out, i.ID)
	}
	return out
}

func TestSearch_LocalMatchMakesNoOracleCall(t *testing.T) {
	f := newFixture(t)

	res, err := f.ws.Search(context.Background(), "clicking noise from engine")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if diff := cmp.Diff([]string{"engine-clicking"}, issueIDs(res.Added)); diff != "" {
		t.Errorf("Added mismatch (-want +got):\n%s", diff)
	}
	if res.Suggestions != nil {
		t.Error("unexpected suggestions")
	}
	if n := f.oracle.Total(); n != 0 {
		t.Errorf("oracle calls = %d, want 0", n)
	}
}

func TestSearch_NoMatchCallsFreeTextOnce(t *testing.T) {
	f := newFixture(t)

	res, err := f.ws.Search(context.Background(), "xyzzy unexplainable warble")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if n := f.oracle.Calls(oracle.OpAnalyzeFreeText); n != 1 {
		t.Errorf("free-text calls = %d, want 1", n)
	}
	if n := f.oracle.Total(); n != 1 {
		t.Errorf("total oracle calls = %d, want 1", n)
	}
	if res.Suggestions == nil || res.Suggestions.Query != "xyzzy unexplainable warble" {
		t.Fatalf("Suggestions = %+v", res.Suggestions)
	}
	if len(res.Added) != 0 {
		t.Errorf("Added = %v, want none", res.Added)
	}

	snap, err := f.ws.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Suggestions == nil || len(snap.Issues) != 0 {
		t.Errorf("snapshot suggestions=%v issues=%v", snap.Suggestions, snap.Issues)
	}
}

func TestSearch_SubstringAddsAllNewMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.ws.Search(ctx, "grinding")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if diff := cmp.Diff([]string{"brakes-grinding", "transmission-grinding"}, issueIDs(res.Added)); diff != "" {
		t.Errorf("Added mismatch (-want +got):\n%s", diff)
	}

	_, err = f.ws.Search(ctx, "GRINDING")
	if !errors.Is(err, domain.ErrAlreadyAdded) {
		t.Errorf("second Search() error = %v, want ErrAlreadyAdded", err)
	}
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "query" {
		t.Errorf("error = %#v, want validation error on query", err)
	}
}

func TestSearch_ClearsSuggestionsOnMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.Search(ctx, "xyzzy"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if _, err := f.ws.Search(ctx, "squealing"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	snap, _ := f.ws.Snapshot(ctx)
	if snap.Suggestions != nil {
		t.Error("suggestions not cleared after a local match")
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	f := newFixture(t)
	if _, err := f.ws.Search(context.Background(), "   "); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("Search() error = %v, want ErrEmptyQuery", err)
	}
	if f.oracle.Total() != 0 {
		t.Error("oracle called for an empty query")
	}
}

func TestAddSuggestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.AddSuggestion(0); !errors.Is(err, ErrSuggestionNotFound) {
		t.Errorf("AddSuggestion() without suggestions error = %v", err)
	}
	if _, err := f.ws.Search(ctx, "xyzzy unexplainable warble"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	first, err := f.ws.AddSuggestion(0)
	if err != nil {
		t.Fatalf("AddSuggestion() error = %v", err)
	}
	second, err := f.ws.AddSuggestion(0)
	if err != nil {
		t.Fatalf("AddSuggestion() error = %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("synthetic ids collide: %q", first.ID)
	}
	want := domain.Issue{
		ID:           first.ID,
		Category:     "Engine",
		Description:  "Worn serpentine belt",
		Severity:     domain.SeverityMedium,
		CommonCauses: []string{"Warbling at idle"},
		Keywords:     []string{},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("AddSuggestion() mismatch (-want +got):\n%s", diff)
	}
	if len(first.ID) < 4 || first.ID[:3] != "ai-" {
		t.Errorf("ID = %q, want ai- prefix", first.ID)
	}
	if _, err := f.ws.AddSuggestion(5); !errors.Is(err, ErrSuggestionNotFound) {
		t.Errorf("AddSuggestion(5) error = %v", err)
	}
}

func TestRemoveIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.Search(ctx, "grinding"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if err := f.ws.RemoveIssue("brakes-grinding"); err != nil {
		t.Fatalf("RemoveIssue() error = %v", err)
	}
	if err := f.ws.RemoveIssue("brakes-grinding"); !errors.Is(err, ErrIssueNotFound) {
		t.Errorf("RemoveIssue() twice error = %v", err)
	}
	snap, _ := f.ws.Snapshot(ctx)
	if diff := cmp.Diff([]string{"transmission-grinding"}, issueIDs(snap.Issues)); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeIssues_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("no issues", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ws.AnalyzeIssues(ctx)
		if !errors.Is(err, domain.ErrNoIssues) {
			t.Errorf("AnalyzeIssues() error = %v, want ErrNoIssues", err)
		}
	})

	t.Run("issues checked before vehicle", func(t *testing.T) {
		f := newFixture(t)
		f.ws.SetVehicle(domain.VehicleInfo{})
		_, err := f.ws.AnalyzeIssues(ctx)
		if !errors.Is(err, domain.ErrNoIssues) {
			t.Errorf("AnalyzeIssues() error = %v, want ErrNoIssues", err)
		}
	})

	t.Run("missing model", func(t *testing.T) {
		f := newFixture(t)
		f.ws.SetVehicle(domain.VehicleInfo{Make: "Toyota", Year: 2015})
		f.ws.Search(ctx, "grinding")
		_, err := f.ws.AnalyzeIssues(ctx)
		if !errors.Is(err, domain.ErrVehicleRequired) {
			t.Errorf("AnalyzeIssues() error = %v, want ErrVehicleRequired", err)
		}
		if f.oracle.Total() != 0 {
			t.Error("oracle called despite unmet precondition")
		}
		api := domain.ToAPIError(err)
		if api.Message != "Please provide vehicle make and model information." || api.Param != "model" {
			t.Errorf("ToAPIError() = %+v", api)
		}
	})
}

func TestAnalyses_PrependHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.Search(ctx, "grinding"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	first, err := f.ws.AnalyzeIssues(ctx)
	if err != nil {
		t.Fatalf("AnalyzeIssues() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Grinding noise when applying brakes", "Grinding noise when shifting gears"}, first.Entry.Symptoms); diff != "" {
		t.Errorf("issue entry mismatch (-want +got):\n%s", diff)
	}

	symptoms := f.ws.Symptoms("", "all")
	if _, err := f.ws.ToggleSymptom(symptoms[0].ID); err != nil {
		t.Fatalf("ToggleSymptom() error = %v", err)
	}
	second, err := f.ws.AnalyzeSymptoms(ctx)
	if err != nil {
		t.Fatalf("AnalyzeSymptoms() error = %v", err)
	}
	if diff := cmp.Diff([]string{symptoms[0].Description}, second.Entry.Symptoms); diff != "" {
		t.Errorf("symptom entry mismatch (-want +got):\n%s", diff)
	}

	history, err := f.ws.History(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ID != second.Entry.ID || history[1].ID != first.Entry.ID {
		t.Errorf("history not newest first: %s, %s", history[0].ID, history[1].ID)
	}
	if len(history[0].Codes) != 0 || history[0].Vehicle != camry {
		t.Errorf("entry = %+v", history[0])
	}

	if len(f.pub.events) != 2 || f.pub.events[0].Source != events.SourceIssues || f.pub.events[1].Source != events.SourceSymptoms {
		t.Errorf("published events = %+v", f.pub.events)
	}

	snap, _ := f.ws.Snapshot(ctx)
	if snap.HistoryCount != 2 {
		t.Errorf("HistoryCount = %d, want 2", snap.HistoryCount)
	}
}

func TestAnalyzeIssues_FallbackIsRecorded(t *testing.T) {
	gen := oracle.GeneratorFunc(func(ctx context.Context, req oracle.Request) (string, error) {
		return "not json", nil
	})
	client := oracle.NewClient(gen, oracle.Options{Counter: tokens.NewEstimator()})
	mgr := NewManager(client, memory.New(), Options{})
	ws := mgr.Create()
	ctx := context.Background()

	ws.SetVehicle(camry)
	if _, err := ws.Search(ctx, "clicking noise from engine"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	a, err := ws.AnalyzeIssues(ctx)
	if err != nil {
		t.Fatalf("AnalyzeIssues() error = %v", err)
	}
	if !a.Fallback || a.Result.Analysis != oracle.FallbackIssuesAnalysis {
		t.Errorf("Analysis = %+v, want fallback", a)
	}
	history, _ := ws.History(ctx, storage.ListOptions{})
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}
}

func TestAnalyze_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	ctx := context.Background()

	f.ws.Search(ctx, "grinding")
	if _, err := f.ws.AnalyzeIssues(ctx); err != nil {
		t.Fatalf("AnalyzeIssues() error = %v", err)
	}
}

func TestSymptoms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.AnalyzeSymptoms(ctx); !errors.Is(err, domain.ErrNoSymptoms) {
		t.Errorf("AnalyzeSymptoms() error = %v, want ErrNoSymptoms", err)
	}
	if _, err := f.ws.ToggleSymptom("nope"); !errors.Is(err, ErrSymptomNotFound) {
		t.Errorf("ToggleSymptom() error = %v", err)
	}

	all := f.ws.Symptoms("", "")
	s, err := f.ws.ToggleSymptom(all[1].ID)
	if err != nil || !s.Selected {
		t.Fatalf("ToggleSymptom() = %+v, %v", s, err)
	}
	s, _ = f.ws.ToggleSymptom(all[1].ID)
	if s.Selected {
		t.Error("second toggle did not unselect")
	}

	f.ws.ToggleSymptom(all[0].ID)
	f.ws.ToggleSymptom(all[2].ID)
	snap, _ := f.ws.Snapshot(ctx)
	if snap.SelectedSymptoms != 2 {
		t.Errorf("SelectedSymptoms = %d, want 2", snap.SelectedSymptoms)
	}
	f.ws.ClearSymptoms()
	snap, _ = f.ws.Snapshot(ctx)
	if snap.SelectedSymptoms != 0 {
		t.Errorf("SelectedSymptoms after clear = %d", snap.SelectedSymptoms)
	}

	// Workspaces do not share checklist state.
	other := f.mgr.Create()
	other.ToggleSymptom(all[0].ID)
	snap, _ = f.ws.Snapshot(ctx)
	if snap.SelectedSymptoms != 0 {
		t.Error("symptom selection leaked between workspaces")
	}
}

func TestSetVehicle(t *testing.T) {
	f := newFixture(t)

	tooOld := domain.VehicleInfo{Make: "Ford", Model: "F-150", Year: 1950}
	if _, err := f.ws.SetVehicle(tooOld); !errors.Is(err, domain.ErrInvalidYear) {
		t.Errorf("SetVehicle() error = %v, want ErrInvalidYear", err)
	}
	neg := -5
	if _, err := f.ws.SetVehicle(domain.VehicleInfo{Make: "Ford", Mileage: &neg}); !errors.Is(err, domain.ErrInvalidMileage) {
		t.Errorf("SetVehicle() error = %v, want ErrInvalidMileage", err)
	}
	v, err := f.ws.SetVehicle(domain.VehicleInfo{Make: "  Honda ", Model: "Civic ", Year: 2020})
	if err != nil {
		t.Fatalf("SetVehicle() error = %v", err)
	}
	if v.Make != "Honda" || v.Model != "Civic" {
		t.Errorf("SetVehicle() = %+v, want trimmed fields", v)
	}
}

func TestConversation_FullFlow(t *testing.T) {
	f := newFixture(t)
	diag := &domain.DiagnosticResult{Analysis: "Loose heat shield", Urgency: domain.UrgencyLow}
	f.oracle.turns = []domain.ConversationTurn{
		turn("Q2", 2),
		{Message: "Got it", CurrentStep: 2, TotalSteps: 5, Diagnosis: diag},
	}
	ctx := context.Background()

	view, err := f.ws.StartConversation(ctx, "xyzzy unexplainable warble")
	if err != nil {
		t.Fatalf("StartConversation() error = %v", err)
	}
	if view.Done || view.Step != 1 || view.Turn.Message != "Q1" {
		t.Fatalf("start view = %+v", view)
	}

	if _, err := f.ws.Respond(ctx, "bogus"); !errors.Is(err, conversation.ErrUnknownOption) {
		t.Errorf("Respond(bogus) error = %v, want ErrUnknownOption", err)
	}

	view, err = f.ws.Respond(ctx, "yes")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if view.Done || view.Step != 2 {
		t.Fatalf("second view = %+v", view)
	}

	view, err = f.ws.Respond(ctx, "no")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !view.Done || view.Result == nil || view.Result.Analysis != "Loose heat shield" {
		t.Fatalf("final view = %+v", view)
	}
	if view.Entry == nil {
		t.Fatal("final view has no history entry")
	}
	if diff := cmp.Diff([]string{"Yes", "No"}, view.Entry.Symptoms); diff != "" {
		t.Errorf("entry symptoms mismatch (-want +got):\n%s", diff)
	}

	// The finished session is discarded.
	if _, err := f.ws.Respond(ctx, "yes"); !errors.Is(err, ErrNoConversation) {
		t.Errorf("Respond() after finish error = %v, want ErrNoConversation", err)
	}
	snap, _ := f.ws.Snapshot(ctx)
	if snap.Conversation != nil || snap.HistoryCount != 1 {
		t.Errorf("snapshot conversation=%v history=%d", snap.Conversation, snap.HistoryCount)
	}
}

func TestConversation_HardCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.StartConversation(ctx, "xyzzy unexplainable warble"); err != nil {
		t.Fatalf("StartConversation() error = %v", err)
	}
	var view ConversationView
	for i := 0; i < 5; i++ {
		var err error
		view, err = f.ws.Respond(ctx, "yes")
		if err != nil {
			t.Fatalf("Respond() #%d error = %v", i+1, err)
		}
	}
	if !view.Done || !view.Forced {
		t.Errorf("view after 5 answers = %+v, want forced finish", view)
	}
	if n := f.oracle.Calls(oracle.OpContinueConversation); n != 5 {
		t.Errorf("continue calls = %d, want 5", n)
	}
}

func TestConversation_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ws.StartConversation(ctx, "grinding brakes"); !errors.Is(err, domain.ErrMatchedLocally) {
		t.Errorf("StartConversation() error = %v, want ErrMatchedLocally", err)
	}
	if _, err := f.ws.StartConversation(ctx, ""); !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("StartConversation() error = %v, want ErrEmptyQuery", err)
	}
	if _, err := f.ws.Respond(ctx, "yes"); !errors.Is(err, ErrNoConversation) {
		t.Errorf("Respond() error = %v, want ErrNoConversation", err)
	}
	if f.oracle.Total() != 0 {
		t.Errorf("oracle calls = %d, want 0", f.oracle.Total())
	}
}

func TestConversation_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.ws.StartConversation(ctx, "xyzzy unexplainable warble")
	f.ws.ResetConversation()

	snap, _ := f.ws.Snapshot(ctx)
	if snap.Conversation != nil || snap.HistoryCount != 0 {
		t.Errorf("after reset conversation=%v history=%d", snap.Conversation, snap.HistoryCount)
	}
}

func TestWorkspace_SerialisesOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	queries := []string{"grinding", "squealing", "clicking", "xyzzy", "overheating", "vibration"}
	var wg sync.WaitGroup
	for _, q := range queries {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			f.ws.Search(ctx, q)
			f.ws.Snapshot(ctx)
		}(q)
	}
	wg.Wait()

	snap, _ := f.ws.Snapshot(ctx)
	seen := make(map[string]bool)
	for _, is := range snap.Issues {
		if seen[is.ID] {
			t.Errorf("duplicate issue %s in working set", is.ID)
		}
		seen[is.ID] = true
	}
}

func TestSnapshot_LastUsed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	mgr := NewManager(newFakeOracle(), memory.New(), Options{Now: clock})
	ws := mgr.Create()

	now = now.Add(time.Minute)
	ws.ClearSuggestions()

	snap, _ := ws.Snapshot(context.Background())
	if !snap.LastUsedAt.Equal(now) {
		t.Errorf("LastUsedAt = %v, want %v", snap.LastUsedAt, now)
	}
	if !snap.CreatedAt.Equal(now.Add(-time.Minute)) {
		t.Errorf("CreatedAt = %v", snap.CreatedAt)
	}
}
