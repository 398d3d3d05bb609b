package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Data directory
	DataDir string

	// Database
	DatabasePath string

	// Auth
	AuthMode  string // "password" or "oidc" (oidc additionally enables SSO)
	JWTSecret string

	// OIDC settings (used when AuthMode == "oidc")
	OIDCClientID     string
	OIDCClientSecret string
	OIDCIssuerURL    string
	OIDCRedirectURI  string

	// OpenAI (chat assistant)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Reminders
	ReminderScanInterval time.Duration
	ReminderLookahead    time.Duration

	// Debug settings
	DBLogQueries bool
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}

// load reads configuration from environment variables
func load() *Config {
	dataDir := getEnv("FOCUSFLOW_DATA_DIR", "./data")

	return &Config{
		// Server
		Port: getEnvInt("PORT", 8484),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		// Data
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "focusflow.sqlite"),

		// Auth
		AuthMode:  getEnv("FOCUSFLOW_AUTH_MODE", "password"),
		JWTSecret: getEnv("FOCUSFLOW_JWT_SECRET", ""),

		// OIDC
		OIDCClientID:     getEnv("FOCUSFLOW_OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("FOCUSFLOW_OIDC_CLIENT_SECRET", ""),
		OIDCIssuerURL:    getEnv("FOCUSFLOW_OIDC_ISSUER_URL", ""),
		OIDCRedirectURI:  getEnv("FOCUSFLOW_OIDC_REDIRECT_URI", ""),

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Reminders
		ReminderScanInterval: getEnvDuration("FOCUSFLOW_REMINDER_INTERVAL", time.Minute),
		ReminderLookahead:    getEnvDuration("FOCUSFLOW_REMINDER_LOOKAHEAD", 24*time.Hour),

		// Debug
		DBLogQueries: getEnv("DB_LOG_QUERIES", "") == "1",
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// IsOIDCEnabled returns true if SSO login through an OIDC provider is configured
func (c *Config) IsOIDCEnabled() bool {
	return c.AuthMode == "oidc" && c.OIDCIssuerURL != "" && c.OIDCClientID != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
