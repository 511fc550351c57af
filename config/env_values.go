package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"query-genie/internal/constants"
)

type Environment struct {
	// Server configs
	IsDocker           bool
	Port               string
	GinMode            string
	CORSAllowedOrigins []string

	// Logging configs
	LogLevel  string
	LogFormat string

	// Session configs
	JWTSecret  string
	SessionTTL time.Duration

	// LLM configs
	LLMProvider     string
	LLMModel        string
	LLMMaxTokens    int
	LLMTimeout      time.Duration
	GroqAPIKey      string
	GroqBaseURL     string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string
	AnthropicAPIKey string

	// Redis configs
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string

	// Target database configs
	DefaultDBType     string
	SchemaCacheTTL    time.Duration
	DBIdleTimeout     time.Duration
	DBCleanupInterval time.Duration
}

var Env Environment

// LoadEnv loads environment variables from .env file if present
// and validates required variables
func LoadEnv() error {
	// Check if running in Docker
	Env.IsDocker = os.Getenv("IS_DOCKER") == "true"

	// Load .env file only if not running in Docker
	if !Env.IsDocker {
		if err := godotenv.Load(); err != nil {
			fmt.Printf("Warning: .env file not found: %v\n", err)
		}
	}

	// Server configs
	Env.Port = getEnvWithDefault("PORT", "8000")
	Env.GinMode = getEnvWithDefault("GIN_MODE", "release")
	Env.CORSAllowedOrigins = getListEnvWithDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"})

	// Logging configs
	Env.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	Env.LogFormat = getEnvWithDefault("LOG_FORMAT", "json")

	// Session configs
	Env.JWTSecret = getEnvWithDefault("QUERYGENIE_JWT_SECRET", "")
	Env.SessionTTL = getDurationEnvWithDefault("QUERYGENIE_SESSION_TTL", 24*time.Hour)

	// LLM configs
	Env.LLMProvider = strings.ToLower(getEnvWithDefault("LLM_PROVIDER", constants.Groq))
	Env.LLMModel = getEnvWithDefault("LLM_MODEL", constants.GetDefaultModel(Env.LLMProvider))
	Env.LLMMaxTokens = getIntEnvWithDefault("LLM_MAX_TOKENS", constants.LLMMaxTokens)
	Env.LLMTimeout = getDurationEnvWithDefault("LLM_TIMEOUT", 60*time.Second)
	Env.GroqAPIKey = getEnvWithDefault("GROQ_API_KEY", "")
	Env.GroqBaseURL = getEnvWithDefault("GROQ_BASE_URL", constants.GroqBaseURL)
	Env.OpenAIAPIKey = getEnvWithDefault("OPENAI_API_KEY", "")
	Env.OpenAIBaseURL = getEnvWithDefault("OPENAI_BASE_URL", "")
	Env.GeminiAPIKey = getEnvWithDefault("GEMINI_API_KEY", "")
	Env.AnthropicAPIKey = getEnvWithDefault("ANTHROPIC_API_KEY", "")

	// Redis configs, an empty host keeps state in process
	Env.RedisHost = getEnvWithDefault("REDIS_HOST", "")
	Env.RedisPort = getEnvWithDefault("REDIS_PORT", "6379")
	Env.RedisUsername = getEnvWithDefault("REDIS_USERNAME", "")
	Env.RedisPassword = getEnvWithDefault("REDIS_PASSWORD", "")

	// Target database configs
	Env.DefaultDBType = strings.ToLower(getEnvWithDefault("DB_DEFAULT_TYPE", constants.DatabaseTypeMySQL))
	Env.SchemaCacheTTL = getDurationEnvWithDefault("SCHEMA_CACHE_TTL", constants.DatabaseConnctionTTL)
	Env.DBIdleTimeout = getDurationEnvWithDefault("DB_IDLE_TIMEOUT", constants.DatabaseConnctionTTL)
	Env.DBCleanupInterval = getDurationEnvWithDefault("DB_CLEANUP_INTERVAL", 2*time.Minute)

	return validateConfig()
}

// LLMAPIKey returns the API key of the configured provider.
func (e Environment) LLMAPIKey() string {
	switch e.LLMProvider {
	case constants.OpenAI:
		return e.OpenAIAPIKey
	case constants.Gemini:
		return e.GeminiAPIKey
	case constants.Anthropic:
		return e.AnthropicAPIKey
	default:
		return e.GroqAPIKey
	}
}

// LLMBaseURL returns the endpoint override of the configured provider.
func (e Environment) LLMBaseURL() string {
	switch e.LLMProvider {
	case constants.Groq:
		return e.GroqBaseURL
	case constants.OpenAI:
		return e.OpenAIBaseURL
	default:
		return ""
	}
}

// Helper functions to get environment variables with defaults and validation
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvWithDefault(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(strValue)
	if err != nil {
		fmt.Printf("Warning: Invalid value for %s, using default: %d\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(strValue)
	if err != nil {
		fmt.Printf("Warning: Invalid duration for %s, using default: %v\n", key, defaultValue)
		return defaultValue
	}
	return value
}

func getListEnvWithDefault(key string, defaultValue []string) []string {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}

	var values []string
	for _, item := range strings.Split(strValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}

func validateConfig() error {
	if len(Env.JWTSecret) < 16 {
		return fmt.Errorf("QUERYGENIE_JWT_SECRET must be at least 16 characters")
	}

	if Env.SessionTTL <= 0 {
		return fmt.Errorf("QUERYGENIE_SESSION_TTL must be positive, got: %v", Env.SessionTTL)
	}

	switch Env.LLMProvider {
	case constants.Groq, constants.OpenAI, constants.Gemini, constants.Anthropic:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", Env.LLMProvider)
	}

	if Env.LLMAPIKey() == "" {
		return fmt.Errorf("API key for LLM provider %s is not set", Env.LLMProvider)
	}

	switch Env.DefaultDBType {
	case constants.DatabaseTypeMySQL, constants.DatabaseTypePostgreSQL, constants.DatabaseTypeYugabyteDB, constants.DatabaseTypeClickhouse:
	default:
		return fmt.Errorf("unsupported DB_DEFAULT_TYPE: %s", Env.DefaultDBType)
	}

	return nil
}
