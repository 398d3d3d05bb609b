package server

import (
	"time"

	"github.com/focusflow-app/focusflow/config"
	"github.com/focusflow-app/focusflow/db"
	"github.com/focusflow-app/focusflow/workers/reminders"
)

// Config holds server configuration
type Config struct {
	// Server infrastructure (immutable, requires restart)
	Port int
	Host string
	Env  string // "development" or "production"

	// Paths (immutable, requires restart)
	DataDir      string
	DatabasePath string

	// Auth
	AuthMode  string
	JWTSecret string

	// OpenAI (chat assistant)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Reminder settings
	ReminderScanInterval time.Duration
	ReminderLookahead    time.Duration

	// Debug settings
	DBLogQueries bool
}

// FromAppConfig builds a server config from the process environment config
func FromAppConfig(cfg *config.Config) *Config {
	return &Config{
		Port:                 cfg.Port,
		Host:                 cfg.Host,
		Env:                  cfg.Env,
		DataDir:              cfg.DataDir,
		DatabasePath:         cfg.DatabasePath,
		AuthMode:             cfg.AuthMode,
		JWTSecret:            cfg.JWTSecret,
		OpenAIAPIKey:         cfg.OpenAIAPIKey,
		OpenAIBaseURL:        cfg.OpenAIBaseURL,
		OpenAIModel:          cfg.OpenAIModel,
		ReminderScanInterval: cfg.ReminderScanInterval,
		ReminderLookahead:    cfg.ReminderLookahead,
		DBLogQueries:         cfg.DBLogQueries,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// ToDBConfig converts server config to database config
func (c *Config) ToDBConfig() db.Config {
	return db.Config{
		Path:       c.DatabasePath,
		LogQueries: c.DBLogQueries,
	}
}

// ToRemindersConfig converts server config to reminders worker config
func (c *Config) ToRemindersConfig() reminders.Config {
	return reminders.Config{
		ScanInterval: c.ReminderScanInterval,
		Lookahead:    c.ReminderLookahead,
	}
}
