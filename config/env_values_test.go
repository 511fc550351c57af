package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-genie/internal/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "LLM_PROVIDER", "LLM_MODEL", "DB_DEFAULT_TYPE", "SCHEMA_CACHE_TTL", "DB_IDLE_TIMEOUT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	t.Setenv("IS_DOCKER", "true")
}

func TestLoadEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUERYGENIE_JWT_SECRET", "a-secret-of-sixteen+")
	t.Setenv("GROQ_API_KEY", "gsk_test")

	require.NoError(t, LoadEnv())
	assert.Equal(t, "8000", Env.Port)
	assert.Equal(t, constants.Groq, Env.LLMProvider)
	assert.Equal(t, constants.GroqModel, Env.LLMModel)
	assert.Equal(t, "gsk_test", Env.LLMAPIKey())
	assert.Equal(t, constants.GroqBaseURL, Env.LLMBaseURL())
	assert.Equal(t, constants.DatabaseTypeMySQL, Env.DefaultDBType)
	assert.Equal(t, 10*time.Minute, Env.SchemaCacheTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUERYGENIE_JWT_SECRET", "a-secret-of-sixteen+")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_IDLE_TIMEOUT", "not-a-duration")

	require.NoError(t, LoadEnv())
	assert.Equal(t, constants.Anthropic, Env.LLMProvider)
	assert.Equal(t, constants.ClaudeModel, Env.LLMModel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, Env.CORSAllowedOrigins)
	assert.Equal(t, 10*time.Minute, Env.DBIdleTimeout)
}

func TestLoadEnvValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUERYGENIE_JWT_SECRET", "short")
	assert.ErrorContains(t, LoadEnv(), "QUERYGENIE_JWT_SECRET")

	t.Setenv("QUERYGENIE_JWT_SECRET", "a-secret-of-sixteen+")
	t.Setenv("LLM_PROVIDER", "cohere")
	assert.ErrorContains(t, LoadEnv(), "unsupported LLM_PROVIDER")

	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")
	assert.ErrorContains(t, LoadEnv(), "API key")
}
