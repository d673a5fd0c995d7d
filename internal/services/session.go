package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/moodlog/moodlog-backend/internal/database"
)

const (
	// SessionDuration is how long a bearer token stays valid.
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for token -> user lookups.
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user -> token lookups.
	UserSessionKeyPrefix = "user_session:"
)

// CreateSession issues a fresh bearer token for a user and stores it in
// Redis. Any previous session for the user is invalidated first, so the
// expiry timer always restarts at login.
func CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	InvalidateUserSessions(ctx, userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	if err := database.RedisClient.Set(ctx, SessionKeyPrefix+token, userID.String(), SessionDuration).Err(); err != nil {
		return "", err
	}
	if err := database.RedisClient.Set(ctx, UserSessionKeyPrefix+userID.String(), token, SessionDuration).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateSession resolves a bearer token to the owning user id. A missing or
// expired token is not an error, just not ok.
func ValidateSession(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if token == "" {
		return uuid.Nil, false, nil
	}

	userIDStr, err := database.RedisClient.Get(ctx, SessionKeyPrefix+token).Result()
	if err != nil {
		return uuid.Nil, false, nil
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, err
	}

	return userID, true, nil
}

// InvalidateSession removes a session, e.g. on logout.
func InvalidateSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	userIDStr, err := database.RedisClient.Get(ctx, SessionKeyPrefix+token).Result()
	if err == nil && userIDStr != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+userIDStr)
	}

	return database.RedisClient.Del(ctx, SessionKeyPrefix+token).Err()
}

// InvalidateUserSessions drops whatever session a user currently holds.
func InvalidateUserSessions(ctx context.Context, userID uuid.UUID) error {
	userSessionKey := UserSessionKeyPrefix + userID.String()

	token, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && token != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+token)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
