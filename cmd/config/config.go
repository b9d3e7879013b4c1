package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the server needs at startup. Handlers receive it
// through constructors; there is no package-level state.
type Config struct {
	ServerAddr    string
	DBPath        string
	SessionSecret string
	SessionTTL    time.Duration
	LogLevel      string
	Env           string
}

// IsProd reports whether the service runs with production settings.
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load reads config.yaml if present and lets environment variables override
// every key. Missing file is fine; a missing session secret outside
// development is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("cmd/config/")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("db.path", "watchlist.db")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("env", "development")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	_ = v.BindEnv("server.addr", "SERVER_ADDR")
	_ = v.BindEnv("db.path", "DB_PATH")
	_ = v.BindEnv("session.secret", "SESSION_SECRET")
	_ = v.BindEnv("session.ttl", "SESSION_TTL")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("env", "APP_ENV")

	cfg := &Config{
		ServerAddr:    v.GetString("server.addr"),
		DBPath:        v.GetString("db.path"),
		SessionSecret: v.GetString("session.secret"),
		SessionTTL:    v.GetDuration("session.ttl"),
		LogLevel:      v.GetString("log.level"),
		Env:           v.GetString("env"),
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProd() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = "dev-secret-change-me"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return cfg, nil
}
