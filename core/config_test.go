package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AuthStrategy != StrategySession {
		t.Fatalf("default strategy = %q, want session", cfg.AuthStrategy)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("default session ttl = %v", cfg.SessionTTL)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("default token ttl = %v", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("default bcrypt cost = %d", cfg.BcryptCost)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AUTH_STRATEGY", "TOKEN")
	t.Setenv("TOKEN_TTL", "48h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://shop.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AuthStrategy != StrategyToken {
		t.Fatalf("strategy = %q", cfg.AuthStrategy)
	}
	if cfg.TokenTTL != 48*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
	if !cfg.CookieSecure {
		t.Fatal("cookie secure not picked up")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://shop.example.com" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.ArtifactTTL() != 48*time.Hour {
		t.Fatalf("artifact ttl should follow token strategy, got %v", cfg.ArtifactTTL())
	}
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("AUTH_STRATEGY", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestLoadConfigFileOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("auth_strategy: token\nsession_ttl: 2h\nbcrypt_cost: 12\ncookie_secure: true\nallowed_origins:\n  - https://shop.example.com\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("AUTH_STRATEGY", "session")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AuthStrategy != StrategyToken {
		t.Fatalf("file should override env, got %q", cfg.AuthStrategy)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("session ttl = %v", cfg.SessionTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("bcrypt cost = %d", cfg.BcryptCost)
	}
	if !cfg.CookieSecure {
		t.Fatal("cookie secure not overridden")
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFileInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("session_ttl: tomorrow\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
