package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moodlog/moodlog-backend/internal/database"
	"github.com/moodlog/moodlog-backend/internal/models"
	"github.com/moodlog/moodlog-backend/internal/services"
	"github.com/moodlog/moodlog-backend/pkg/utils"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// Register creates a user and issues a session token.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	// Check if user already exists
	var existingEmail string
	err := database.PostgresDB.QueryRow("SELECT email FROM users WHERE LOWER(email) = $1", req.Email).Scan(&existingEmail)
	if err == nil {
		writeError(w, http.StatusConflict, "An account with this email already exists")
		return
	} else if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	userID := uuid.New()
	now := time.Now()

	_, err = database.PostgresDB.Exec(`
		INSERT INTO users (id, created_at, name, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, now, req.Name, req.Email, hashedPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := services.CreateSession(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User: &models.User{
			ID:        userID,
			CreatedAt: now,
			Name:      req.Name,
			Email:     req.Email,
		},
		Token: token,
	})
}

// Login verifies credentials and issues a session token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var userID uuid.UUID
	var name, email, passwordHash string
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, name, email, password_hash
		FROM users WHERE LOWER(email) = $1
	`, req.Email).Scan(&userID, &createdAt, &name, &email, &passwordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := services.CreateSession(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User: &models.User{
			ID:        userID,
			CreatedAt: createdAt,
			Name:      name,
			Email:     email,
		},
		Token: token,
	})
}

// GetMe returns the authenticated user's profile, served from the Redis
// cache when warm.
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var user models.User
	cacheKey := services.ProfileCacheKey(userID)
	if hit, _ := services.Cache.Get(r.Context(), cacheKey, &user); hit {
		writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: &user})
		return
	}

	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, name, email
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.CreatedAt, &user.Name, &user.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Authentication required")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	_ = services.Cache.Set(r.Context(), cacheKey, user, services.ProfileCacheTTL)

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: &user})
}

// Logout invalidates the caller's session token.
func Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := services.InvalidateSession(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}
