package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/moodlog/moodlog-backend/internal/ai"
	"github.com/moodlog/moodlog-backend/internal/config"
	"github.com/moodlog/moodlog-backend/internal/services"
)

// Process-scoped services, created once at startup and shared by all
// handlers.
var (
	annotationService *services.AnnotationService
	semanticService   *services.SemanticSearchService
	cloudinaryService *services.CloudinaryService
)

// InitAIServices wires the shared model client into the annotation and
// semantic search services.
func InitAIServices(client *ai.Client) {
	annotationService = services.NewAnnotationService(client)
	semanticService = services.NewSemanticSearchService(client)
}

// InitCloudinaryService sets up the attachment upload service. Optional.
func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth validates the session and returns the authenticated user's ID.
// Returns ("", false) if not authenticated.
func requireAuth(r *http.Request) (string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", false
	}
	userID, ok, err := services.ValidateSession(r.Context(), token)
	if err != nil || !ok {
		return "", false
	}
	return userID.String(), true
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
