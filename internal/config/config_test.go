package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "MONGODB_URI", "MONGO_URI", "POSTGRES_URI", "REDIS_URI", "ALLOWED_ORIGINS", "FRONTEND_URL", "AI_API_KEY", "AI_BASE_URL", "AI_MODEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017/moodlog", cfg.MongoURI)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AIBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
	assert.Empty(t, cfg.AIAPIKey)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("PORT", "9000")
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://www.example.com")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sk-test", cfg.AIAPIKey)
	assert.Equal(t, []string{"https://app.example.com", "https://www.example.com"}, cfg.AllowedOrigins)
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"a", "b"}, parseOrigins(" a ,, b "))
}
