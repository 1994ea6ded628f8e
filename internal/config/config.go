package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mr1hm/go-quake-risk/internal/severity"
)

type Config struct {
	Server  ServerConfig
	Worker  WorkerConfig
	Feed    FeedConfig
	Regions RegionsConfig
	Alerts  AlertsConfig
	Auth    AuthConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	RateLimitRPS  int
	ShutdownGrace time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type FeedConfig struct {
	URL          string
	Timeout      time.Duration
	PollInterval time.Duration
}

type RegionsConfig struct {
	// URL or file path of the province FeatureCollection.
	Source string
}

type AlertsConfig struct {
	MinSeverity severity.Tier
}

type AuthConfig struct {
	BcryptCost int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

const (
	DefaultFeedURL    = "https://api.orhanaydogdu.com.tr/deprem/kandilli/live"
	DefaultRegionsURL = "https://raw.githubusercontent.com/cihadturhan/tr-geojson/master/geo/tr-cities-utf8.json"
)

func Load() (*Config, error) {
	minSeverity, err := severity.ParseTier(getEnv("ALERT_MIN_SEVERITY", "warning"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_MIN_SEVERITY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:  getEnvInt("RATE_LIMIT_RPS", 10),
			ShutdownGrace: getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 50),
		},
		Feed: FeedConfig{
			URL:          getEnv("FEED_URL", DefaultFeedURL),
			Timeout:      getEnvDuration("FEED_TIMEOUT", 15*time.Second),
			PollInterval: getEnvDuration("FEED_POLL_INTERVAL", time.Minute),
		},
		Regions: RegionsConfig{
			Source: getEnv("REGIONS_SOURCE", DefaultRegionsURL),
		},
		Alerts: AlertsConfig{
			MinSeverity: minSeverity,
		},
		Auth: AuthConfig{
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/quake-risk.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Feed.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed timeout must be positive")
	}
	if c.Feed.PollInterval < 30*time.Second {
		return fmt.Errorf("feed poll interval must be at least 30 seconds")
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size must not be negative")
	}

	// bcrypt.MinCost and bcrypt.MaxCost
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
