package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by NOESIS_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("NOESIS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// StoreProvider returns the triple log backend.
// Defaults to "memory" if not set.
// Valid values: postgres, sqlite, memory
func StoreProvider() string {
	p := os.Getenv("STORE_PROVIDER")
	if p == "" {
		return "memory"
	}
	return p
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// SQLitePath returns the sqlite database file for the sqlite provider.
func SQLitePath() string {
	p := os.Getenv("SQLITE_PATH")
	if p == "" {
		return "noesis.db"
	}
	return p
}

// RedisURL returns the optional redis URL for the latest-value cache.
// Empty disables the cache.
func RedisURL() string {
	return os.Getenv("REDIS_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "mock" if not set, so the server runs without keys.
// Valid values: openai, anthropic, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "mock"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "none": similarity suggestions are opt-in.
// Valid values: openai, mock, none
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "none"
	}
	return p
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "openai":
		return OpenAIAPIKey()
	default:
		return ""
	}
}

// AuditQueueSize returns the bounded audit queue capacity.
// Defaults to 256 if not set.
func AuditQueueSize() int {
	n, err := strconv.Atoi(os.Getenv("AUDIT_QUEUE_SIZE"))
	if err != nil || n <= 0 {
		return 256
	}
	return n
}

func MigrationsPath() string {
	p := os.Getenv("MIGRATIONS_PATH")
	if p == "" {
		return "migrations"
	}
	return p
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
