package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("AUTH_JWT_SECRET", "this-is-a-very-long-jwt-secret-for-testing-32+")
	t.Setenv("RECOVERY_RECOVER_URI", "https://example.com/recover/")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

auth:
  jwt_secret: "this-is-a-very-long-jwt-secret-for-testing-32+"
  access_token_ttl: "12h"
  password_hash_cost: 8

recovery:
  token_ttl: "45m"
  recover_uri: "https://example.com/recover/"

mail:
  host: "smtp.example.com"
  port: 2525
  from: "noreply@example.com"

log:
  level: "debug"
  format: "text"
`

func validConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			JWTSecret:        "this-is-a-very-long-jwt-secret-for-testing-32+",
			JWTIssuer:        "catalog-backend",
			AccessTokenTTL:   24 * time.Hour,
			PasswordHashCost: 10,
		},
		Recovery: RecoveryConfig{
			TokenTTL:   30 * time.Minute,
			RecoverURI: "https://example.com/recover/",
		},
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("database.dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}

	// Auth
	if cfg.Auth.AccessTokenTTL != 12*time.Hour {
		t.Errorf("auth.access_token_ttl = %v, want 12h", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.PasswordHashCost != 8 {
		t.Errorf("auth.password_hash_cost = %d, want 8", cfg.Auth.PasswordHashCost)
	}

	// Recovery
	if cfg.Recovery.TokenTTL != 45*time.Minute {
		t.Errorf("recovery.token_ttl = %v, want 45m", cfg.Recovery.TokenTTL)
	}
	if cfg.Recovery.RecoverURI != "https://example.com/recover/" {
		t.Errorf("recovery.recover_uri = %q", cfg.Recovery.RecoverURI)
	}

	// Mail
	if !cfg.Mail.Enabled() {
		t.Error("mail should be enabled with host and from set")
	}
	if cfg.Mail.Port != 2525 {
		t.Errorf("mail.port = %d, want 2525", cfg.Mail.Port)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want %q (ENV override)", cfg.Log.Level, "warn")
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)

	t.Setenv("CONFIG_PATH", "")
	// Set working dir to a temp dir with no config.yaml
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Recovery.TokenTTL != 30*time.Minute {
		t.Errorf("recovery.token_ttl = %v, want 30m (default)", cfg.Recovery.TokenTTL)
	}
	if cfg.Mail.Enabled() {
		t.Error("mail should be disabled without host/from")
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_JWTSecretTooShort(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret")
	}
}

func TestValidate_NonPositiveTokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AccessTokenTTL = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero access token TTL")
	}
}

func TestValidate_HashCostOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.PasswordHashCost = 99

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range hash cost")
	}
}

func TestValidate_MissingRecoverURI(t *testing.T) {
	cfg := validConfig()
	cfg.Recovery.RecoverURI = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty recover URI")
	}
}

func TestValidate_NonPositiveRecoveryTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Recovery.TokenTTL = -time.Minute

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative recovery TTL")
	}
}
