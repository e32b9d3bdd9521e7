package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/autodiag/internal/auth"
	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/oracle"
	"github.com/tjfontaine/autodiag/internal/server"
	"github.com/tjfontaine/autodiag/internal/storage/memory"
	"github.com/tjfontaine/autodiag/internal/workspace"
)

// stubOracle never finishes a conversation on its own.
type stubOracle struct {
	mu    sync.Mutex
	calls map[string]int
}

func (s *stubOracle) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
}

func (s *stubOracle) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

var stubResult = domain.DiagnosticResult{
	Analysis:           "Likely worn brake pads",
	PossibleCauses:     []string{"Worn pads"},
	RecommendedActions: []string{"Inspect brakes"},
	Urgency:            domain.UrgencyHigh,
}

func (s *stubOracle) AnalyzeIssues(ctx context.Context, v domain.VehicleInfo, issues []domain.Issue) (domain.DiagnosticResult, oracle.Outcome) {
	s.count(oracle.OpAnalyzeIssues)
	return stubResult, oracle.Outcome{}
}

func (s *stubOracle) AnalyzeSymptoms(ctx context.Context, v domain.VehicleInfo, symptoms []domain.Symptom) (domain.DiagnosticResult, oracle.Outcome) {
	s.count(oracle.OpAnalyzeSymptoms)
	return stubResult, oracle.Outcome{}
}

func (s *stubOracle) AnalyzeFreeText(ctx context.Context, v domain.VehicleInfo, text string) (domain.FreeTextAnalysis, oracle.Outcome) {
	s.count(oracle.OpAnalyzeFreeText)
	return domain.FreeTextAnalysis{
		Analysis: "Possibly a loose heat shield",
		SuggestedIssues: []domain.SuggestedIssue{
			{Description: "Loose heat shield", Category: "Exhaust", Severity: domain.SeverityLow, Reasoning: "Rattle under the car"},
		},
	}, oracle.Outcome{}
}

func (s *stubOracle) ExplainCode(ctx context.Context, code string) (string, oracle.Outcome) {
	s.count(oracle.OpExplainCode)
	return "Explanation of " + code, oracle.Outcome{}
}

func (s *stubOracle) StartConversation(ctx context.Context, v domain.VehicleInfo, d string) (domain.ConversationTurn, oracle.Outcome) {
	s.count(oracle.OpStartConversation)
	return question(1), oracle.Outcome{}
}

func (s *stubOracle) ContinueConversation(ctx context.Context, v domain.VehicleInfo, d string, h []domain.Exchange, step int) (domain.ConversationTurn, oracle.Outcome) {
	s.count(oracle.OpContinueConversation)
	return question(step), oracle.Outcome{}
}

func question(step int) domain.ConversationTurn {
	return domain.ConversationTurn{
		Message:     "Does it happen when cold?",
		Options:     []domain.ResponseOption{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}},
		CurrentStep: step,
		TotalSteps:  5,
	}
}

type testAPI struct {
	oracle  *stubOracle
	manager *workspace.Manager
	router  *chi.Mux
}

func newTestAPI(t *testing.T, middlewares ...func(http.Handler) http.Handler) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := &stubOracle{}
	mgr := workspace.NewManager(o, memory.New(), workspace.Options{MaxTurns: 5, Logger: logger})
	r := chi.NewRouter()
	NewHandler(mgr, logger).Routes(r, middlewares...)
	return &testAPI{oracle: o, manager: mgr, router: r}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// newWorkspace creates a workspace with a vehicle and returns its path.
func (a *testAPI) newWorkspace(t *testing.T) string {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/v1/workspaces", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create workspace status = %d, body = %s", rr.Code, rr.Body)
	}
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, "/v1/workspaces/") {
		t.Fatalf("Location = %q", loc)
	}
	rr = a.do(t, http.MethodPut, loc+"/vehicle", map[string]any{"make": "Toyota", "model": "Camry", "year": 2015})
	if rr.Code != http.StatusOK {
		t.Fatalf("set vehicle status = %d, body = %s", rr.Code, rr.Body)
	}
	return loc
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body, err)
	}
	return v
}

type errorBody struct {
	Error domain.APIError `json:"error"`
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t)
	a.newWorkspace(t)

	rr := a.do(t, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	got := decodeBody[map[string]any](t, rr)
	if got["status"] != "ok" || got["workspaces"] != float64(1) {
		t.Errorf("body = %v", got)
	}
}

// snakeKeys returns the object keys in v that contain an underscore.
func snakeKeys(v any) []string {
	var out []string
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			if strings.Contains(k, "_") {
				out = append(out, k)
			}
			out = append(out, snakeKeys(child)...)
		}
	case []any:
		for _, child := range v {
			out = append(out, snakeKeys(child)...)
		}
	}
	return out
}

func TestPayloadKeysAreCamelCase(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, ws + "/search", searchRequest{Query: "grinding"}},
		{http.MethodPost, ws + "/issues/analysis", nil},
		{http.MethodGet, ws, nil},
		{http.MethodGet, ws + "/history", nil},
		{http.MethodGet, "/v1/catalog/issues", nil},
		{http.MethodGet, "/v1/codes/P0300", nil},
	}
	for _, st := range steps {
		rr := a.do(t, st.method, st.path, st.body)
		if rr.Code >= 300 {
			t.Fatalf("%s %s status = %d: %s", st.method, st.path, rr.Code, rr.Body)
		}
		if keys := snakeKeys(decodeBody[any](t, rr)); len(keys) > 0 {
			t.Errorf("%s %s has snake_case keys %v", st.method, st.path, keys)
		}
	}

	rr := a.do(t, http.MethodGet, ws, nil)
	if !strings.Contains(rr.Body.String(), `"commonCauses"`) {
		t.Errorf("workspace issues missing commonCauses: %s", rr.Body)
	}
}

func TestCatalog(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantKey    string
	}{
		{"issues", "/v1/catalog/issues", http.StatusOK, "issues"},
		{"symptoms", "/v1/catalog/symptoms", http.StatusOK, "categories"},
		{"codes", "/v1/catalog/codes", http.StatusOK, "codes"},
		{"vehicles", "/v1/catalog/vehicles", http.StatusOK, "years"},
		{"models", "/v1/catalog/vehicles/Toyota/models", http.StatusOK, "models"},
		{"unknown make", "/v1/catalog/vehicles/Yugo/models", http.StatusNotFound, "error"},
		{"known code", "/v1/codes/P0300", http.StatusOK, "severityColor"},
		{"unknown code", "/v1/codes/P9999", http.StatusNotFound, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(t, http.MethodGet, tt.path, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body)
			}
			got := decodeBody[map[string]json.RawMessage](t, rr)
			if _, ok := got[tt.wantKey]; !ok {
				t.Errorf("response missing %q: %s", tt.wantKey, rr.Body)
			}
		})
	}
}

func TestExplainCode(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/v1/codes/p0300/explanation", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	got := decodeBody[explanationResponse](t, rr)
	if got.Code != "P0300" || got.Known == nil || got.Explanation != "Explanation of P0300" {
		t.Errorf("explanation = %+v", got)
	}
}

func TestWorkspaceNotFound(t *testing.T) {
	a := newTestAPI(t)

	rr := a.do(t, http.MethodGet, "/v1/workspaces/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[errorBody](t, rr); got.Error.Type != domain.ErrorTypeNotFound {
		t.Errorf("error type = %q", got.Error.Type)
	}
}

func TestSearchAndAnalyze(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	rr := a.do(t, http.MethodPost, ws+"/search", searchRequest{Query: "grinding brakes"})
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d: %s", rr.Code, rr.Body)
	}
	res := decodeBody[searchResponse](t, rr)
	if len(res.Added) == 0 || res.Added[0].SeverityColor == "" {
		t.Fatalf("search added = %+v", res.Added)
	}
	if n := a.oracle.Calls(oracle.OpAnalyzeFreeText); n != 0 {
		t.Errorf("free-text calls = %d, want 0", n)
	}

	rr = a.do(t, http.MethodPost, ws+"/issues/analysis", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("analysis status = %d: %s", rr.Code, rr.Body)
	}
	an := decodeBody[analysisResponse](t, rr)
	if an.Result == nil || an.Result.Urgency != domain.UrgencyHigh || an.Result.UrgencyColor == "" {
		t.Errorf("result = %+v", an.Result)
	}

	rr = a.do(t, http.MethodGet, ws+"/history", nil)
	hist := decodeBody[struct {
		Entries []domain.HistoryEntry `json:"entries"`
	}](t, rr)
	if len(hist.Entries) != 1 || hist.Entries[0].ID != an.Entry.ID {
		t.Fatalf("history = %+v", hist.Entries)
	}

	rr = a.do(t, http.MethodGet, ws+"/history/"+an.Entry.ID, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("history entry status = %d", rr.Code)
	}
	rr = a.do(t, http.MethodGet, ws+"/history/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing history entry status = %d", rr.Code)
	}
}

func TestSearch_SuggestionsFlow(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	rr := a.do(t, http.MethodPost, ws+"/search", searchRequest{Query: "xyzzy warble underneath"})
	res := decodeBody[searchResponse](t, rr)
	if res.Suggestions == nil || len(res.Suggestions.SuggestedIssues) != 1 {
		t.Fatalf("suggestions = %+v", res.Suggestions)
	}

	rr = a.do(t, http.MethodPost, ws+"/suggestions/0", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add suggestion status = %d: %s", rr.Code, rr.Body)
	}
	added := decodeBody[issueView](t, rr)
	if !strings.HasPrefix(added.ID, "ai-") {
		t.Errorf("suggested issue id = %q", added.ID)
	}

	rr = a.do(t, http.MethodPost, ws+"/suggestions/abc", nil)
	if got := decodeBody[errorBody](t, rr); rr.Code != http.StatusBadRequest || got.Error.Param != "index" {
		t.Errorf("bad index: status = %d, error = %+v", rr.Code, got.Error)
	}

	rr = a.do(t, http.MethodDelete, ws+"/issues/"+added.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("remove issue status = %d", rr.Code)
	}
	rr = a.do(t, http.MethodDelete, ws+"/issues/"+added.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("remove missing issue status = %d", rr.Code)
	}
}

func TestPreconditionErrors(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	tests := []struct {
		name      string
		method    string
		path      string
		body      any
		wantParam string
		wantMsg   string
	}{
		{"no issues", http.MethodPost, "/issues/analysis", nil, "issues", domain.UserMessage(domain.ErrNoIssues)},
		{"no symptoms", http.MethodPost, "/symptoms/analysis", nil, "symptoms", domain.UserMessage(domain.ErrNoSymptoms)},
		{"empty query", http.MethodPost, "/search", searchRequest{Query: "  "}, "query", domain.UserMessage(domain.ErrEmptyQuery)},
		{"bad year", http.MethodPut, "/vehicle", map[string]any{"make": "Ford", "model": "F-150", "year": 1950}, "year", domain.UserMessage(domain.ErrInvalidYear)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(t, tt.method, ws+tt.path, tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d: %s", rr.Code, rr.Body)
			}
			got := decodeBody[errorBody](t, rr)
			want := domain.APIError{Type: domain.ErrorTypePrecondition, Message: tt.wantMsg, Param: tt.wantParam}
			if diff := cmp.Diff(want, got.Error); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if n := a.oracle.Calls(oracle.OpAnalyzeIssues) + a.oracle.Calls(oracle.OpAnalyzeSymptoms); n != 0 {
		t.Errorf("oracle called %d times for failed preconditions", n)
	}
}

func TestInvalidJSON(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	req := httptest.NewRequest(http.MethodPost, ws+"/search", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[errorBody](t, rr); got.Error.Type != domain.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q", got.Error.Type)
	}
}

func TestSymptoms(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	rr := a.do(t, http.MethodGet, ws+"/symptoms?q=smoke", nil)
	list := decodeBody[struct {
		Symptoms []domain.Symptom `json:"symptoms"`
	}](t, rr)
	if len(list.Symptoms) == 0 {
		t.Fatal("no symptoms matched \"smoke\"")
	}
	id := list.Symptoms[0].ID

	rr = a.do(t, http.MethodPost, ws+"/symptoms/"+id+"/toggle", nil)
	if got := decodeBody[domain.Symptom](t, rr); !got.Selected {
		t.Errorf("toggled symptom = %+v, want selected", got)
	}
	rr = a.do(t, http.MethodPost, ws+"/symptoms/nope/toggle", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown symptom status = %d", rr.Code)
	}

	rr = a.do(t, http.MethodPost, ws+"/symptoms/analysis", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("analysis status = %d: %s", rr.Code, rr.Body)
	}
	if got := decodeBody[analysisResponse](t, rr); len(got.Entry.Symptoms) != 1 {
		t.Errorf("entry symptoms = %v", got.Entry.Symptoms)
	}
}

func TestConversationFlow(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	rr := a.do(t, http.MethodPost, ws+"/conversation", conversationRequest{Description: "grinding brakes"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("locally matched description status = %d", rr.Code)
	}

	rr = a.do(t, http.MethodPost, ws+"/conversation", conversationRequest{Description: "xyzzy warble underneath"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rr.Code, rr.Body)
	}
	conv := decodeBody[conversationView](t, rr)
	if conv.Done || len(conv.Options) != 2 {
		t.Fatalf("conversation = %+v", conv)
	}

	rr = a.do(t, http.MethodPost, ws+"/conversation/responses", respondRequest{OptionID: "maybe"})
	if got := decodeBody[errorBody](t, rr); rr.Code != http.StatusBadRequest || got.Error.Param != "optionId" {
		t.Fatalf("unknown option: status = %d, error = %+v", rr.Code, got.Error)
	}

	for i := 0; i < 5 && !conv.Done; i++ {
		rr = a.do(t, http.MethodPost, ws+"/conversation/responses", respondRequest{OptionID: "yes"})
		if rr.Code != http.StatusOK {
			t.Fatalf("respond %d status = %d: %s", i, rr.Code, rr.Body)
		}
		conv = decodeBody[conversationView](t, rr)
	}
	if !conv.Done || !conv.Forced || conv.Result == nil || conv.Entry == nil {
		t.Fatalf("conversation did not finish: %+v", conv)
	}

	rr = a.do(t, http.MethodPost, ws+"/conversation/responses", respondRequest{OptionID: "yes"})
	if rr.Code != http.StatusConflict {
		t.Errorf("respond after finish status = %d", rr.Code)
	}

	rr = a.do(t, http.MethodGet, ws, nil)
	if got := decodeBody[workspaceView](t, rr); got.Conversation != nil || got.HistoryCount != 1 {
		t.Errorf("workspace after conversation = %+v", got)
	}
}

func TestDeleteWorkspace(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	if rr := a.do(t, http.MethodDelete, ws, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := a.do(t, http.MethodGet, ws, nil); rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rr.Code)
	}
}

func TestHistoryPagination(t *testing.T) {
	a := newTestAPI(t)
	ws := a.newWorkspace(t)

	rr := a.do(t, http.MethodGet, ws+"/history?limit=-1", nil)
	if got := decodeBody[errorBody](t, rr); rr.Code != http.StatusBadRequest || got.Error.Param != "limit" {
		t.Errorf("status = %d, error = %+v", rr.Code, got.Error)
	}
}

func TestRoutes_AuthOnlyWrapsV1(t *testing.T) {
	const key = "test-key"
	authn := auth.NewAuthenticator([]auth.Key{{Name: "garage", KeyHash: auth.HashAPIKey(key)}})
	a := newTestAPI(t, server.AuthMiddleware(authn))

	if rr := a.do(t, http.MethodGet, "/healthz", nil); rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200 without a key", rr.Code)
	}
	if rr := a.do(t, http.MethodGet, "/v1/catalog/issues", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/catalog/issues", nil)
	req.Header.Set("Authorization", "Bearer "+key)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rr.Code)
	}
}
