package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moodlog/moodlog-backend/internal/database"
)

const (
	// CacheKeyPrefix namespaces all cache keys in Redis.
	CacheKeyPrefix = "cache:"
	// ProfileCacheTTL is short: profiles barely change, but a stale name on
	// /auth/me should not outlive a session refresh cycle.
	ProfileCacheTTL = 15 * time.Minute
)

// CacheService is a small JSON cache over the shared Redis client. Used for
// user profiles on the /auth/me path.
type CacheService struct{}

// Get retrieves a value from cache. A miss is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in cache.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, CacheKeyPrefix+key, jsonData, ttl).Err()
}

// Delete removes a value from cache.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return database.RedisClient.Del(ctx, CacheKeyPrefix+key).Err()
}

// ProfileCacheKey is the cache key for one user's profile.
func ProfileCacheKey(userID string) string {
	return "user_profile:" + userID
}

// Global cache service instance
var Cache = &CacheService{}
