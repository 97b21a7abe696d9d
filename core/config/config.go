package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel   OTelConfig
	OpenAI OpenAIConfig
	Canvas CanvasConfig
	Drafts DraftsConfig
	Env    string
	Port   string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// CanvasConfig tunes the Canvas API client. Base URL and token are NOT here:
// they arrive per request and are threaded explicitly through every call.
type CanvasConfig struct {
	PerPage        int
	MaxRetries     int
	BackoffBaseMs  int
	RequestTimeout int // seconds
}

type DraftsConfig struct {
	MaxConcurrent int
	MaxTokens     int
}

// Load loads configuration from environment variables.
// In development it also reads a local .env file if one exists.
func Load() (Config, error) {
	if getEnv("DRAFTDESK_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("DRAFTDESK_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "draftdesk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Canvas: CanvasConfig{
			PerPage:        getEnvInt("CANVAS_PER_PAGE", 100),
			MaxRetries:     getEnvInt("CANVAS_MAX_RETRIES", 3),
			BackoffBaseMs:  getEnvInt("CANVAS_BACKOFF_BASE_MS", 1000),
			RequestTimeout: getEnvInt("CANVAS_REQUEST_TIMEOUT", 60),
		},
		Drafts: DraftsConfig{
			MaxConcurrent: getEnvInt("DRAFTS_MAX_CONCURRENT", 8),
			MaxTokens:     getEnvInt("DRAFTS_MAX_TOKENS", 1024),
		},
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
