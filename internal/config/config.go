package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Session backends accepted by DASH_SESSION_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds the dashboard client configuration sourced from env vars.
type Config struct {
	APIBaseURL     string        `env:"DASH_API_BASE_URL"`
	SessionBackend string        `env:"DASH_SESSION_BACKEND" envDefault:"sqlite"`
	SessionPath    string        `env:"DASH_SESSION_PATH" envDefault:"dashboard-session.db"`
	SessionKey     string        `env:"DASH_SESSION_KEY" envDefault:"auth-storage"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	RequestTimeout time.Duration `env:"DASH_REQUEST_TIMEOUT" envDefault:"30s"`
	Locale         string        `env:"DASH_LOCALE" envDefault:"en"`
}

// Load reads the client configuration from the environment and validates the
// backend-specific requirements.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("DASH_API_BASE_URL is required")
	}
	switch cfg.SessionBackend {
	case BackendSQLite:
		if strings.TrimSpace(cfg.SessionPath) == "" {
			return Config{}, errors.New("DASH_SESSION_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return Config{}, errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown DASH_SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if strings.TrimSpace(cfg.SessionKey) == "" {
		cfg.SessionKey = "auth-storage"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	tag, err := language.Parse(fallback(cfg.Locale, "en"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DASH_LOCALE %q: %w", cfg.Locale, err)
	}
	cfg.Locale = tag.String()

	return cfg, nil
}

// LanguageTag returns DASH_LOCALE as a language tag, English when unset.
func (c Config) LanguageTag() language.Tag {
	if strings.TrimSpace(c.Locale) == "" {
		return language.English
	}
	return language.Make(c.Locale)
}

// ServerConfig holds the development API configuration.
type ServerConfig struct {
	Port          string   `env:"PORT" envDefault:"8080"`
	JWTSecret     string   `env:"JWT_SECRET"`
	JWTIssuer     string   `env:"JWT_ISSUER" envDefault:"all-in-dash"`
	JWTTTLMinutes int      `env:"JWT_TTL_MINUTES" envDefault:"60"`
	CORSOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	SeedPassword  string   `env:"DEVAPI_SEED_PASSWORD" envDefault:"dashboard-demo"`

	JWTTTL time.Duration
}

// LoadServer reads the development API configuration from the environment.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Port = fallback(cfg.Port, "8080")
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)
	if cfg.JWTTTLMinutes > 0 {
		cfg.JWTTTL = time.Duration(cfg.JWTTTLMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	if cfg.JWTSecret == "" {
		return ServerConfig{}, errors.New("JWT_SECRET is required")
	}
	if len(cfg.SeedPassword) < 8 {
		return ServerConfig{}, errors.New("DEVAPI_SEED_PASSWORD must be at least 8 characters")
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c ServerConfig) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func normalizeOrigins(in []string) []string {
	var out []string
	for _, part := range in {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
