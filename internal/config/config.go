package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"persona-chat/internal/conversation"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Conversation defaults
	DefaultModel       string
	DefaultTemperature float64
	DefaultTokenBudget int

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnvOrDefault("OPENAI_BASE_URL", ""),
		DefaultModel:       getEnvOrDefault("OPENAI_MODEL", conversation.DefaultModel),
		DefaultTemperature: getEnvAsFloatOrDefault("DEFAULT_TEMPERATURE", conversation.DefaultTemperature),
		DefaultTokenBudget: getEnvAsIntOrDefault("DEFAULT_TOKEN_BUDGET", conversation.DefaultTokenBudget),
		SessionSecret:      mustGetEnv("SESSION_SECRET"),
		SessionTTL:         time.Duration(getEnvAsIntOrDefault("SESSION_TTL_MINUTES", 720)) * time.Minute,
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// ChatDefaults returns the settings new sessions start with. Any value
// outside the allowed ranges is replaced by the built-in default.
func (c *Config) ChatDefaults() conversation.Settings {
	s := conversation.Settings{
		Model:       c.DefaultModel,
		Temperature: c.DefaultTemperature,
		TokenBudget: c.DefaultTokenBudget,
	}

	def := conversation.DefaultSettings()
	if err, ok := s.Validate().(*conversation.ValidationError); ok && err != nil {
		if _, bad := err.Fields["model"]; bad {
			s.Model = def.Model
		}
		if _, bad := err.Fields["temperature"]; bad {
			s.Temperature = def.Temperature
		}
		if _, bad := err.Fields["token_budget"]; bad {
			s.TokenBudget = def.TokenBudget
		}
	}
	return s
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
