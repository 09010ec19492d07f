// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	RequestTimeout time.Duration
}

// DatabaseConfig holds MongoDB connection settings. An empty URI means the
// service runs against in-memory actor state only (useful for local
// development and tests).
type DatabaseConfig struct {
	URI  string
	Name string
}

// SchedulerConfig controls the scheduled-post publisher.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// RateLimitConfig bounds per-IP request rates.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Scheduler      *SchedulerConfig
	Auth           *AuthConfig
	RateLimit      *RateLimitConfig
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default settings for everything; environment
// variables override individual fields in LoadConfig.
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			RequestTimeout: 5 * time.Second,
		},
		Database: &DatabaseConfig{
			URI:  "",
			Name: "mindcanvus",
		},
		Scheduler: &SchedulerConfig{
			Enabled:  true,
			Interval: time.Minute,
		},
		Auth: &AuthConfig{
			JWTSecret:   "mindcanvus_dev_secret_change_me",
			TokenExpiry: 24 * time.Hour,
		},
		RateLimit: &RateLimitConfig{
			Requests: 100,
			Window:   15 * time.Minute,
		},
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment, applying defaults for anything unset.
func LoadConfig() (*Config, error) {
	// Silent failure if no .env exists, which is fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		cfg.Server.Host = host
	}

	if timeout := os.Getenv("REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}

	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		cfg.Database.URI = uri
	}

	if name := os.Getenv("MONGODB_DATABASE"); name != "" {
		cfg.Database.Name = name
	}

	if enabled := os.Getenv("SCHEDULER_ENABLED"); enabled != "" {
		cfg.Scheduler.Enabled = enabled == "true"
	}

	if interval := os.Getenv("SCHEDULER_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			cfg.Scheduler.Interval = d
		}
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if expiry := os.Getenv("JWT_EXPIRY"); expiry != "" {
		if d, err := time.ParseDuration(expiry); err == nil && d > 0 {
			cfg.Auth.TokenExpiry = d
		}
	}

	if reqs := os.Getenv("RATE_LIMIT_REQUESTS"); reqs != "" {
		if n, err := strconv.Atoi(reqs); err == nil && n > 0 {
			cfg.RateLimit.Requests = n
		}
	}

	if window := os.Getenv("RATE_LIMIT_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil && d > 0 {
			cfg.RateLimit.Window = d
		}
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitAndTrim(origins)
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
