// Package config loads service configuration from the environment, with an
// optional YAML file layered on top.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime knob for the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// HTTPConfig configures the listener and CORS policy.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR,default=:8000" yaml:"addr"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=10s" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=15s" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s" yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173" yaml:"allowed_origins"`
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET,default=dev-secret-change-me" yaml:"jwt_secret"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,default=15m" yaml:"access_ttl"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL,default=168h" yaml:"refresh_ttl"`
}

// StorageConfig selects and configures the persistence driver.
type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER,default=memory" yaml:"driver"`
	DSN         string `env:"DATABASE_URL" yaml:"dsn"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE,default=true" yaml:"auto_migrate"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RPS   int `env:"RATE_LIMIT_RPS,default=20" yaml:"rps"`
	Burst int `env:"RATE_LIMIT_BURST,default=40" yaml:"burst"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL,default=info" yaml:"level"`
	Pretty bool   `env:"LOG_PRETTY,default=false" yaml:"pretty"`
}

// Load reads configuration from the environment (after loading a .env file
// when present), then overlays the YAML file named by CONFIG_FILE if set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration, falling back to defaults on failure.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in defaults without consulting the environment.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		Auth: AuthConfig{
			JWTSecret:  "dev-secret-change-me",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 168 * time.Hour,
		},
		Storage: StorageConfig{
			Driver:      "memory",
			AutoMigrate: true,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage driver postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}
	return nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
