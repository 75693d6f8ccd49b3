package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env            string        `mapstructure:"env"`
	ServerPort     string        `mapstructure:"port"`
	DatabaseType   string        `mapstructure:"db_type"`
	DatabaseURL    string        `mapstructure:"database_url"`
	DatabasePath   string        `mapstructure:"db_path"`
	MigrationsPath string        `mapstructure:"migrations_path"`
	TokenSecret    string        `mapstructure:"token_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	EventRateLimit int           `mapstructure:"event_rate_limit"`
	EventRateWin   time.Duration `mapstructure:"event_rate_window"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_path", "./deckdrill.db")
	v.SetDefault("migrations_path", "./migrations")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("event_rate_limit", 60)
	v.SetDefault("event_rate_window", "1m")

	v.AutomaticEnv()
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("db_type", "DB_TYPE")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("db_path", "DB_PATH")
	_ = v.BindEnv("migrations_path", "MIGRATIONS_PATH")
	_ = v.BindEnv("token_secret", "TOKEN_SECRET")
	_ = v.BindEnv("token_ttl", "TOKEN_TTL")
	_ = v.BindEnv("event_rate_limit", "EVENT_RATE_LIMIT")
	_ = v.BindEnv("event_rate_window", "EVENT_RATE_WINDOW")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}

	return &cfg, nil
}
