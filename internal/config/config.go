package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	JWT    JWTConfig
	Rate   RateConfig
	Slack  SlackConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// StoreConfig holds record-store persistence settings.
type StoreConfig struct {
	DataFile  string
	BackupDir string
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RateConfig holds rate-limiting knobs (requests per second plus burst).
type RateConfig struct {
	AuthPerSecond float64
	AuthBurst     int
	APIPerSecond  float64
	APIBurst      int
}

// SlackConfig holds optional Slack notification settings. Notifications are
// disabled when BotToken is empty.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// Load reads configuration from environment variables. Defaults are safe for
// local development only; the JWT secret must always be set explicitly.
func Load() (*Config, error) {
	readTimeout, err := getEnvDuration("EVEMIND_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("EVEMIND_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("EVEMIND_JWT_ACCESS_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("EVEMIND_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	authPerSecond, err := getEnvFloat("EVEMIND_RATE_AUTH_PER_SECOND", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	authBurst, err := getEnvInt("EVEMIND_RATE_AUTH_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	apiPerSecond, err := getEnvFloat("EVEMIND_RATE_API_PER_SECOND", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	apiBurst, err := getEnvInt("EVEMIND_RATE_API_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:         getEnv("EVEMIND_SERVER_ADDR", ":3000"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  getEnvList("EVEMIND_CORS_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			DataFile:  getEnv("EVEMIND_DATA_FILE", "data.json"),
			BackupDir: getEnv("EVEMIND_BACKUP_DIR", ""),
		},
		JWT: JWTConfig{
			Secret:     getEnv("EVEMIND_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Rate: RateConfig{
			AuthPerSecond: authPerSecond,
			AuthBurst:     authBurst,
			APIPerSecond:  apiPerSecond,
			APIBurst:      apiBurst,
		},
		Slack: SlackConfig{
			BotToken: getEnv("EVEMIND_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("EVEMIND_SLACK_CHANNEL", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("EVEMIND_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("EVEMIND_JWT_SECRET must be at least 32 characters")
	}

	if c.Store.DataFile == "" {
		return errors.New("EVEMIND_DATA_FILE must not be empty")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("EVEMIND_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("EVEMIND_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("EVEMIND_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("EVEMIND_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Rate.AuthPerSecond <= 0 || c.Rate.APIPerSecond <= 0 {
		return errors.New("rate limits must be positive")
	}
	if c.Rate.AuthBurst < 1 || c.Rate.APIBurst < 1 {
		return errors.New("rate-limit bursts must be >= 1")
	}
	if c.Slack.BotToken != "" && c.Slack.Channel == "" {
		return errors.New("EVEMIND_SLACK_CHANNEL is required when EVEMIND_SLACK_BOT_TOKEN is set")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
