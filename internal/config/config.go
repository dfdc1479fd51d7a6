package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string

	// Message store
	Store         string
	DatabaseURL   string
	SQLitePath    string
	Migrate       bool
	StoreFallback string

	// LLM
	LLMProvider      string
	GeminiAPIKey     string
	GeminiModelID    string
	OpenAIAPIKey     string
	OpenAIModel      string
	GroqAPIKey       string
	GroqBaseURL      string
	GroqModel        string
	ContextWindow    int
	ModelTimeout     time.Duration
	ModelConcurrency int
	SystemPrompt     string

	// Vertex
	GCPCredentials string
	GCPProjectID   string
	VertexLocation string
	ClaudeModel    string

	// Redis fan-out for websocket events
	RedisURL string
}

// Load reads the environment, loading .env first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnvOrDefault("MODEL_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "3000"),
		CORSOrigins: getEnvOrDefault("CORS_ORIGINS", "*"),

		Store:         strings.ToLower(getEnvOrDefault("STORE", StorePostgres)),
		DatabaseURL:   os.Getenv("DB_URL"),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "chat.db"),
		Migrate:       getEnvAsBoolOrDefault("DB_MIGRATE", true),
		StoreFallback: strings.ToLower(os.Getenv("STORE_FALLBACK")),

		LLMProvider:      strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModelID:    getEnvOrDefault("GEMINI_MODEL_ID", "gemini-2.0-flash-exp"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnvOrDefault("OPENAI_MODEL", "gpt-4.1"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:      getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:        os.Getenv("GROQ_MODEL_NAME"),
		ContextWindow:    getEnvAsIntOrDefault("CONTEXT_WINDOW", 10),
		ModelTimeout:     timeout,
		ModelConcurrency: getEnvAsIntOrDefault("MODEL_CONCURRENCY", 5),
		SystemPrompt:     os.Getenv("SYSTEM_PROMPT"),

		GCPCredentials: os.Getenv("GCP_SERVICE_ACCOUNT_CREDENTIALS"),
		GCPProjectID:   os.Getenv("GOOGLE_CLOUD_PROJECT_ID"),
		VertexLocation: getEnvOrDefault("GOOGLE_CLOUD_VERTEXAI_LOCATION", "us-east5"),
		ClaudeModel:    getEnvOrDefault("CLAUDE_VERTEX_MODEL", "claude-sonnet-4-5@20250929"),

		RedisURL: os.Getenv("REDIS_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that can be checked without touching the network.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_URL must be set when STORE=%s", StorePostgres)
		}
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want postgres, sqlite or memory)", c.Store)
	}

	if c.StoreFallback != "" && c.StoreFallback != StoreMemory {
		return fmt.Errorf("unknown STORE_FALLBACK %q (only memory is supported)", c.StoreFallback)
	}
	if c.ContextWindow <= 0 {
		return fmt.Errorf("CONTEXT_WINDOW must be positive, got %d", c.ContextWindow)
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive, got %s", c.ModelTimeout)
	}
	if c.ModelConcurrency <= 0 {
		return fmt.Errorf("MODEL_CONCURRENCY must be positive, got %d", c.ModelConcurrency)
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
