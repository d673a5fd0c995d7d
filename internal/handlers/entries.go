package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moodlog/moodlog-backend/internal/models"
	"github.com/moodlog/moodlog-backend/internal/services"
)

// storeTimeout bounds a single Mongo operation inside a request.
const storeTimeout = 5 * time.Second

type CreateEntryRequest struct {
	Text string `json:"text"`
}

type UpdateEntryRequest struct {
	Text      *string    `json:"text,omitempty"`
	Tags      *[]string  `json:"tags,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type EntryResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Entry   *models.Entry `json:"entry,omitempty"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ListEntriesResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Entries    []models.Entry `json:"entries"`
	Pagination Pagination     `json:"pagination"`
}

// CreateEntry runs the ingestion pipeline: annotate the raw text (fallback on
// any model failure), then persist. The model call happens synchronously
// inside this request; the entry is durable only after annotation.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	result := annotationService.Annotate(r.Context(), req.Text)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entry, err := services.CreateEntry(ctx, userID, req.Text, result.Annotation)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{
		Success: true,
		Message: "Entry created successfully",
		Entry:   entry,
	})
}

// GetEntries returns one filtered, sorted page of the caller's entries.
func GetEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := services.ParseEntryFilter(r.URL.Query())

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entries, total, err := services.QueryEntries(ctx, userID, filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ListEntriesResponse{
			Success: false,
			Message: "Failed to fetch entries",
			Entries: []models.Entry{},
		})
		return
	}

	writeJSON(w, http.StatusOK, ListEntriesResponse{
		Success: true,
		Entries: entries,
		Pagination: Pagination{
			Total: total,
			Pages: services.TotalPages(total, filter.Limit),
			Page:  filter.Page,
			Limit: filter.Limit,
		},
	})
}

// UpdateEntry applies a partial edit to an owned entry. Editing text does not
// re-annotate; tags can be replaced explicitly and createdAt supports
// backdating.
func UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text != nil && *req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text cannot be empty")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entry, err := services.UpdateEntry(ctx, chi.URLParam(r, "id"), userID, services.EntryPatch{
		Text:      req.Text,
		Tags:      req.Tags,
		CreatedAt: req.CreatedAt,
	})
	if err != nil {
		writeEntryError(w, err, "Failed to update entry")
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{
		Success: true,
		Message: "Entry updated successfully",
		Entry:   entry,
	})
}

// DeleteEntry removes an owned entry.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := services.DeleteEntry(ctx, chi.URLParam(r, "id"), userID); err != nil {
		writeEntryError(w, err, "Failed to delete entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Entry deleted successfully",
	})
}

// writeEntryError maps store errors onto statuses. Ownership failures get 401
// and say nothing about the entry beyond the code.
func writeEntryError(w http.ResponseWriter, err error, fallbackMessage string) {
	switch err {
	case services.ErrEntryNotFound:
		writeError(w, http.StatusNotFound, "Entry not found")
	case services.ErrEntryForbidden:
		writeError(w, http.StatusUnauthorized, "Not authorized")
	default:
		writeError(w, http.StatusInternalServerError, fallbackMessage)
	}
}
