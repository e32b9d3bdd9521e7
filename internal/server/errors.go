package server

import (
	"encoding/json"
	"net/http"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// WriteError writes apiErr in the API's error envelope.
func WriteError(w http.ResponseWriter, apiErr *domain.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatusCode())
	_ = json.NewEncoder(w).Encode(map[string]*domain.APIError{"error": apiErr})
}
