package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/moodlog/moodlog-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/logout", handlers.Logout)

	// Entry routes (ingestion pipeline + filtered listing + point CRUD)
	r.Get("/api/entries", handlers.GetEntries)
	r.Post("/api/entries", handlers.CreateEntry)
	r.Put("/api/entries/{id}", handlers.UpdateEntry)
	r.Delete("/api/entries/{id}", handlers.DeleteEntry)

	// AI semantic search over a caller-supplied candidate set
	r.Post("/api/ai/search", handlers.SemanticSearch)

	// Entry attachment uploads
	r.Post("/api/upload", handlers.UploadFile)
}
