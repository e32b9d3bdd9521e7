package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tjfontaine/autodiag/internal/conversation"
	"github.com/tjfontaine/autodiag/internal/domain"
	"github.com/tjfontaine/autodiag/internal/server"
	"github.com/tjfontaine/autodiag/internal/storage"
	"github.com/tjfontaine/autodiag/internal/workspace"
)

// toAPIError maps package errors onto the API error taxonomy.
func toAPIError(err error) *domain.APIError {
	switch {
	case errors.Is(err, workspace.ErrNotFound),
		errors.Is(err, workspace.ErrIssueNotFound),
		errors.Is(err, workspace.ErrSymptomNotFound),
		errors.Is(err, workspace.ErrSuggestionNotFound),
		errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound(err.Error())
	case errors.Is(err, conversation.ErrUnknownOption):
		return domain.ErrInvalidRequest(err.Error()).WithParam("optionId")
	case errors.Is(err, workspace.ErrNoConversation),
		errors.Is(err, conversation.ErrSessionClosed):
		return domain.NewAPIError(domain.ErrorTypeConflict, err.Error())
	}
	return domain.ToAPIError(err)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	server.AddError(r.Context(), err)
	if apiErr.Type == domain.ErrorTypeServer {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", server.GetRequestID(r.Context())),
			slog.String("error", err.Error()))
	}
	server.WriteError(w, apiErr)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrInvalidRequest("invalid JSON body: " + err.Error())
	}
	return nil
}
