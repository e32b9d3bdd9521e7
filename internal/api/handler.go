// Package api exposes workspaces, the catalog and code explanations over
// HTTP.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/autodiag/internal/catalog"
	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/server"
	"github.com/tjfontaine/autodiag/internal/storage"
	"github.com/tjfontaine/autodiag/internal/workspace"
)

// Handler serves the HTTP API.
type Handler struct {
	manager *workspace.Manager
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler creates a handler backed by manager.
func NewHandler(manager *workspace.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{manager: manager, logger: logger, now: time.Now}
}

// Routes mounts the API on r. The middlewares only wrap the /v1 routes so
// health checks stay unauthenticated.
func (h *Handler) Routes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middlewares...)

		r.Get("/catalog/issues", h.handleCatalogIssues)
		r.Get("/catalog/symptoms", h.handleCatalogSymptoms)
		r.Get("/catalog/codes", h.handleCatalogCodes)
		r.Get("/catalog/vehicles", h.handleCatalogVehicles)
		r.Get("/catalog/vehicles/{make}/models", h.handleCatalogModels)

		r.Get("/codes/{code}", h.handleLookupCode)
		r.Get("/codes/{code}/explanation", h.handleExplainCode)

		r.Post("/workspaces", h.handleCreateWorkspace)
		r.Route("/workspaces/{id}", func(r chi.Router) {
			r.Get("/", h.withWorkspace(h.handleGetWorkspace))
			r.Delete("/", h.handleDeleteWorkspace)
			r.Put("/vehicle", h.withWorkspace(h.handleSetVehicle))

			r.Post("/search", h.withWorkspace(h.handleSearch))
			r.Post("/suggestions/{index}", h.withWorkspace(h.handleAddSuggestion))
			r.Delete("/suggestions", h.withWorkspace(h.handleClearSuggestions))
			r.Delete("/issues/{issueID}", h.withWorkspace(h.handleRemoveIssue))
			r.Post("/issues/analysis", h.withWorkspace(h.handleAnalyzeIssues))

			r.Get("/symptoms", h.withWorkspace(h.handleListSymptoms))
			r.Post("/symptoms/{symptomID}/toggle", h.withWorkspace(h.handleToggleSymptom))
			r.Delete("/symptoms", h.withWorkspace(h.handleClearSymptoms))
			r.Post("/symptoms/analysis", h.withWorkspace(h.handleAnalyzeSymptoms))

			r.Post("/conversation", h.withWorkspace(h.handleStartConversation))
			r.Post("/conversation/responses", h.withWorkspace(h.handleRespond))
			r.Delete("/conversation", h.withWorkspace(h.handleResetConversation))

			r.Get("/history", h.withWorkspace(h.handleListHistory))
			r.Get("/history/{entryID}", h.withWorkspace(h.handleGetHistory))
		})
	})
}

type workspaceHandlerFunc func(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace)

// withWorkspace resolves the {id} path parameter.
func (h *Handler) withWorkspace(next workspaceHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ws, err := h.manager.Get(id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		server.AddLogField(r.Context(), "workspace_id", id)
		next(w, r, ws)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"workspaces": h.manager.Len(),
	})
}

func (h *Handler) handleCatalogIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"issues": newIssueViews(catalog.Issues())})
}

func (h *Handler) handleCatalogSymptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": catalog.SymptomCategories(),
		"symptoms":   catalog.Symptoms(),
	})
}

func (h *Handler) handleCatalogCodes(w http.ResponseWriter, r *http.Request) {
	codes := catalog.Codes()
	out := make([]codeView, len(codes))
	for i, c := range codes {
		out[i] = newCodeView(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"codes": out})
}

func (h *Handler) handleCatalogVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"makes": catalog.Makes(),
		"years": catalog.ModelYears(h.now().Year()),
	})
}

func (h *Handler) handleCatalogModels(w http.ResponseWriter, r *http.Request) {
	vehicleMake := chi.URLParam(r, "make")
	models := catalog.Models(vehicleMake)
	if models == nil {
		h.writeError(w, r, domain.ErrNotFound("unknown make: "+vehicleMake).WithParam("make"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"make": vehicleMake, "models": models})
}

func (h *Handler) handleLookupCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	c, ok := catalog.LookupCode(code)
	if !ok {
		h.writeError(w, r, domain.ErrNotFound("unknown trouble code: "+code).WithParam("code"))
		return
	}
	writeJSON(w, http.StatusOK, newCodeView(c))
}

func (h *Handler) handleExplainCode(w http.ResponseWriter, r *http.Request) {
	exp, err := h.manager.ExplainCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := explanationResponse{Code: exp.Code, Explanation: exp.Text, Fallback: exp.Fallback}
	if exp.Known != nil {
		v := newCodeView(*exp.Known)
		resp.Known = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := h.manager.Create()
	server.AddLogField(r.Context(), "workspace_id", ws.ID())

	snap, err := ws.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/workspaces/"+ws.ID())
	writeJSON(w, http.StatusCreated, newWorkspaceView(snap))
}

func (h *Handler) handleGetWorkspace(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	snap, err := ws.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorkspaceView(snap))
}

func (h *Handler) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetVehicle(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req domain.VehicleInfo
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := ws.SetVehicle(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req searchRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := ws.Search(r.Context(), req.Query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "match_mode", string(res.Mode))
	writeJSON(w, http.StatusOK, searchResponse{
		Mode:        res.Mode,
		Added:       newIssueViews(res.Added),
		Suggestions: newSuggestionsView(res.Suggestions),
	})
}

func (h *Handler) handleAddSuggestion(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, domain.ErrInvalidRequest("suggestion index must be an integer").WithParam("index"))
		return
	}
	issue, err := ws.AddSuggestion(index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueView{Issue: issue, SeverityColor: issue.Severity.Color()})
}

func (h *Handler) handleClearSuggestions(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	ws.ClearSuggestions()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveIssue(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	if err := ws.RemoveIssue(chi.URLParam(r, "issueID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAnalyzeIssues(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	a, err := ws.AnalyzeIssues(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logFallback(r, a.Fallback)
	writeJSON(w, http.StatusOK, newAnalysisResponse(a))
}

func (h *Handler) handleListSymptoms(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]any{
		"symptoms": ws.Symptoms(q.Get("q"), q.Get("category")),
	})
}

func (h *Handler) handleToggleSymptom(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	s, err := ws.ToggleSymptom(chi.URLParam(r, "symptomID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleClearSymptoms(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	ws.ClearSymptoms()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAnalyzeSymptoms(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	a, err := ws.AnalyzeSymptoms(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logFallback(r, a.Fallback)
	writeJSON(w, http.StatusOK, newAnalysisResponse(a))
}

type conversationRequest struct {
	Description string `json:"description"`
}

func (h *Handler) handleStartConversation(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req conversationRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := ws.StartConversation(r.Context(), req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "conversation_id", view.ID)
	h.logFallback(r, view.Fallback)
	writeJSON(w, http.StatusCreated, newConversationView(&view))
}

type respondRequest struct {
	OptionID string `json:"optionId"`
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req respondRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := ws.Respond(r.Context(), req.OptionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "conversation_id", view.ID)
	h.logFallback(r, view.Fallback)
	writeJSON(w, http.StatusOK, newConversationView(&view))
}

func (h *Handler) handleResetConversation(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	ws.ResetConversation()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	opts, err := listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := ws.History(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	entry, err := ws.HistoryEntry(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) logFallback(r *http.Request, fallback bool) {
	if fallback {
		server.AddLogField(r.Context(), "oracle_fallback", "true")
	}
}

func listOptions(r *http.Request) (storage.ListOptions, error) {
	var opts storage.ListOptions
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &opts.Limit},
		{"offset", &opts.Offset},
	} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, domain.ErrInvalidRequest(p.name + " must be a non-negative integer").WithParam(p.name)
		}
		*p.dst = n
	}
	return opts, nil
}
