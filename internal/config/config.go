package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	InstanceID      string
	InstanceToken   string
	GreenAPIBaseURL string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	AdminNumbers    []string
	LeadsDBPath     string
	OpsAddr         string
	LogLevel        string
	PollIdleDelay   time.Duration
	PollErrorDelay  time.Duration
	HTTPTimeout     time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		InstanceID:      getEnv("INSTANCE_ID", ""),
		InstanceToken:   getEnv("INSTANCE_TOKEN", ""),
		GreenAPIBaseURL: getEnv("GREENAPI_BASE_URL", "https://api.green-api.com"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AdminNumbers:    getEnvAsList("ADMIN_NUMBERS", "+77776463138,77776463138"),
		LeadsDBPath:     getEnv("LEADS_DB_PATH", "client_records.db"),
		OpsAddr:         getEnv("OPS_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PollIdleDelay:   getEnvAsDuration("POLL_IDLE_DELAY", time.Second),
		PollErrorDelay:  getEnvAsDuration("POLL_ERROR_DELAY", 5*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
	}

	for _, v := range []struct {
		name  string
		value string
	}{
		{"INSTANCE_ID", cfg.InstanceID},
		{"INSTANCE_TOKEN", cfg.InstanceToken},
		{"OPENAI_API_KEY", cfg.OpenAIAPIKey},
	} {
		if v.value == "" {
			return nil, fmt.Errorf("config: required env var %s is not set", v.name)
		}
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable as a slice
func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
