package handlers

import (
	"net/http"

	"github.com/moodlog/moodlog-backend/internal/services"
)

type SemanticSearchRequest struct {
	Query   string                    `json:"query"`
	Entries []services.EntryCandidate `json:"entries"`
}

type SemanticSearchResponse struct {
	Success bool     `json:"success"`
	IDs     []string `json:"ids"`
}

// SemanticSearch matches a natural-language query against the caller's
// candidate entries. A model failure is indistinguishable from no matches;
// this route never 500s on the model's account.
func SemanticSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SemanticSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	ids := semanticService.Match(r.Context(), req.Query, req.Entries)

	writeJSON(w, http.StatusOK, SemanticSearchResponse{
		Success: true,
		IDs:     ids,
	})
}
