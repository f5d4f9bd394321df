// Package config loads application configuration from config/app.yaml with
// environment variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Sessions SessionConfig  `yaml:"sessions"`
	Auth     AuthConfig     `yaml:"auth"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig points at PostgreSQL.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig points at the session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SessionConfig controls session lifetime and the client cookie.
type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name"`
	IdleTTL     time.Duration `yaml:"idle_ttl"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
	Secure      bool          `yaml:"secure"`
}

// AuthConfig controls the API token variant and login throttling.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	LoginPerMinute int           `yaml:"login_per_minute"`
	LoginBurst     int           `yaml:"login_burst"`
}

// GeocodeConfig points at the forward-geocoding provider.
type GeocodeConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// Load reads config/app.yaml relative to the working directory, falling
// back to defaults when the file is absent, then applies env overrides.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "app.yaml"))
}

// LoadFromPath reads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if cfg.Server.Port == 0 {
		return nil, fmt.Errorf("server port is required")
	}
	if cfg.Sessions.IdleTTL > cfg.Sessions.MaxLifetime {
		return nil, fmt.Errorf("session idle_ttl %s exceeds max_lifetime %s", cfg.Sessions.IdleTTL, cfg.Sessions.MaxLifetime)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/campgrounds?sslmode=disable",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Sessions: SessionConfig{
			CookieName:  "campground_session",
			IdleTTL:     24 * time.Hour,
			MaxLifetime: 7 * 24 * time.Hour,
		},
		Auth: AuthConfig{
			TokenTTL:       time.Hour,
			LoginPerMinute: 10,
			LoginBurst:     5,
		},
		Geocode: GeocodeConfig{
			BaseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("GEOCODE_TOKEN"); v != "" {
		c.Geocode.Token = v
	}
}
