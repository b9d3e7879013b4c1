package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("got addr %q, want :8080", cfg.ServerAddr)
	}
	if cfg.DBPath != "watchlist.db" {
		t.Errorf("got db path %q, want watchlist.db", cfg.DBPath)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("got ttl %v, want 24h", cfg.SessionTTL)
	}
	if cfg.SessionSecret == "" {
		t.Error("development secret fallback missing")
	}
	if cfg.IsProd() {
		t.Error("default env should not be production")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_SECRET", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerAddr != ":9090" {
		t.Errorf("got addr %q, want :9090", cfg.ServerAddr)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("got ttl %v, want 2h", cfg.SessionTTL)
	}
	if cfg.SessionSecret != "from-env" {
		t.Errorf("got secret %q, want from-env", cfg.SessionSecret)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("production load without secret succeeded")
	}
}
