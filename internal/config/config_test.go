package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate_ValidConfig(t *testing.T) {
	if err := validBaseConfig().Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidServerEnv(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "invalid"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid SERVER_ENV")
	}
	if !strings.Contains(err.Error(), "SERVER_ENV") {
		t.Errorf("expected error to mention SERVER_ENV, got: %v", err)
	}
}

func TestConfig_Validate_MissingPort(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got: %v", err)
	}
}

func TestConfig_Validate_EmptyAllowedOrigins(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.AllowedOrigins = []string{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty CORS_ALLOWED_ORIGINS")
	}
	if !strings.Contains(err.Error(), "CORS_ALLOWED_ORIGINS") {
		t.Errorf("expected error to mention CORS_ALLOWED_ORIGINS, got: %v", err)
	}
}

func TestConfig_Validate_MissingDatabaseHost(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing DB_HOST")
	}
	if !strings.Contains(err.Error(), "DB_HOST") {
		t.Errorf("expected error to mention DB_HOST, got: %v", err)
	}
}

func TestConfig_Validate_NonPositiveConnectTimeout(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.ConnectTimeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for zero DB_CONNECT_TIMEOUT")
	}
	if !strings.Contains(err.Error(), "DB_CONNECT_TIMEOUT") {
		t.Errorf("expected error to mention DB_CONNECT_TIMEOUT, got: %v", err)
	}
}

func TestConfig_Validate_InvalidJWTExpiration(t *testing.T) {
	cfg := validBaseConfig()
	cfg.JWT.ExpirationHours = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for zero JWT_EXPIRATION_HOURS")
	}
	if !strings.Contains(err.Error(), "JWT_EXPIRATION_HOURS") {
		t.Errorf("expected error to mention JWT_EXPIRATION_HOURS, got: %v", err)
	}
}

func TestConfig_Validate_ProductionRejectsDevSecret(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "production"
	cfg.JWT.Secret = devJWTSecret

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for development secret in production")
	}
	if !strings.Contains(err.Error(), "development default") {
		t.Errorf("expected error to mention the development default, got: %v", err)
	}
}

func TestConfig_Validate_ProductionRequiresLongSecret(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "production"
	cfg.JWT.Secret = "too-short"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for short secret in production")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("expected error to mention secret length, got: %v", err)
	}
}

func TestConfig_Validate_DevelopmentAllowsDevSecret(t *testing.T) {
	cfg := validBaseConfig()
	cfg.JWT.Secret = devJWTSecret

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected development secret to be accepted in development, got: %v", err)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           "",
			Env:            "invalid",
			AllowedOrigins: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}

	errStr := err.Error()
	expectedFields := []string{
		"SERVER_PORT", "SERVER_ENV", "CORS_ALLOWED_ORIGINS", "DB_HOST", "DB_NAMESPACE",
		"JWT_SECRET", "JWT_EXPIRATION_HOURS", "RATE_LIMIT_RATE", "MISSION_EXPIRY_INTERVAL",
	}
	for _, field := range expectedFields {
		if !strings.Contains(errStr, field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestConfig_Validate_AdminEmails(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Admin.Emails = []string{"ops@example.com", "not-an-address"}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ADMIN_EMAILS") {
		t.Fatalf("expected ADMIN_EMAILS error, got %v", err)
	}

	cfg.Admin.Emails = []string{"ops@example.com"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Env: "development"}}
	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	cfg.Server.Env = "production"
	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false in production")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Env: "production"}}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	cfg.Server.Env = "development"
	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false in development")
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "12")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("MISSION_EXPIRY_INTERVAL", "30s")
	t.Setenv("ADMIN_EMAILS", " Ops@Example.com ,lead@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.JWT.ExpirationHours != 12 {
		t.Errorf("expected 12h expiration, got %d", cfg.JWT.ExpirationHours)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("expected trimmed origins, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Jobs.MissionExpiryInterval != 30*time.Second {
		t.Errorf("expected 30s expiry interval, got %v", cfg.Jobs.MissionExpiryInterval)
	}
	if want := []string{"ops@example.com", "lead@example.com"}; !slices.Equal(cfg.Admin.Emails, want) {
		t.Errorf("expected admin emails %v, got %v", want, cfg.Admin.Emails)
	}
}

func TestLoad_ReadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_NAMESPACE=from_dotenv\n"), 0600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	t.Chdir(dir)
	// godotenv never overrides variables that are already set
	t.Setenv("DB_NAMESPACE", "")
	os.Unsetenv("DB_NAMESPACE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Namespace != "from_dotenv" {
		t.Errorf("expected namespace from .env, got %q", cfg.Database.Namespace)
	}
}

func TestLoad_DefaultsWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed without .env: %v", err)
	}
	if cfg.JWT.ExpirationHours <= 0 {
		t.Errorf("expected a positive default expiration, got %d", cfg.JWT.ExpirationHours)
	}
	if cfg.Database.ConnectTimeout != 15*time.Second {
		t.Errorf("expected 15s connect timeout, got %v", cfg.Database.ConnectTimeout)
	}
	if cfg.Database.SlowQuery != 500*time.Millisecond {
		t.Errorf("expected 500ms slow query threshold, got %v", cfg.Database.SlowQuery)
	}
}

// validBaseConfig returns a minimal valid configuration for testing
func validBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "ambassador",
			Database:  "main",
			User:      "root",
			Password:  "root",

			ConnectTimeout: 15 * time.Second,
			SlowQuery:      500 * time.Millisecond,
		},
		JWT: JWTConfig{
			Secret:          "a-production-grade-secret-of-sufficient-length",
			ExpirationHours: 24,
			Issuer:          "ambassador-api",
		},
		RateLimit: RateLimitConfig{
			Rate:   100,
			Window: time.Minute,
			Burst:  20,
		},
		Jobs: JobsConfig{
			MissionExpiryInterval: time.Minute,
		},
	}
}
