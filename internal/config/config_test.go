package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "workspace")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("JWT_REFRESH_TTL", "")
}

func TestLoadAppliesTTLDefaults(t *testing.T) {
	setBaseEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m access TTL, got %v", c.Auth.AccessTokenTTL)
	}
	if c.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh TTL, got %v", c.Auth.RefreshTokenTTL)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected local sslmode default, got %q", c.DB.SSLMode)
	}
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing secrets")
	}
	if !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") || !strings.Contains(err.Error(), "JWT_REFRESH_SECRET") {
		t.Fatalf("expected both secrets reported, got: %v", err)
	}
}

func TestLoadRejectsEqualSecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_ACCESS_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for equal secrets")
	}
}

func TestLoadRejectsRefreshTTLNotAboveAccessTTL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "1h")
	t.Setenv("JWT_REFRESH_TTL", "30m")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for refresh TTL <= access TTL")
	}
}
