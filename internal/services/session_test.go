package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/moodlog-backend/internal/database"
)

func setupTestRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.RedisClient.Close() })
}

func TestSessionRoundTrip(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := CreateSession(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotID, ok, err := ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)
}

func TestValidateSessionUnknownToken(t *testing.T) {
	setupTestRedis(t)

	_, ok, err := ValidateSession(context.Background(), "not-a-real-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateSessionEmptyToken(t *testing.T) {
	setupTestRedis(t)

	_, ok, err := ValidateSession(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateSession(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := CreateSession(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, InvalidateSession(ctx, token))

	_, ok, _ := ValidateSession(ctx, token)
	assert.False(t, ok)
}

func TestNewLoginInvalidatesOldSession(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := CreateSession(ctx, userID)
	require.NoError(t, err)
	second, err := CreateSession(ctx, userID)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, ok, _ := ValidateSession(ctx, first)
	assert.False(t, ok, "old token should be dead after a new login")

	_, ok, _ = ValidateSession(ctx, second)
	assert.True(t, ok)
}

func TestSessionsAreUserScoped(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	tokenA, err := CreateSession(ctx, userA)
	require.NoError(t, err)
	tokenB, err := CreateSession(ctx, userB)
	require.NoError(t, err)

	gotA, ok, _ := ValidateSession(ctx, tokenA)
	require.True(t, ok)
	gotB, ok, _ := ValidateSession(ctx, tokenB)
	require.True(t, ok)

	assert.Equal(t, userA, gotA)
	assert.Equal(t, userB, gotB)
	assert.NotEqual(t, gotA, gotB)
}
