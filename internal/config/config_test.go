package config

import (
	"strings"
	"testing"
	"time"
)

func validBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "medcircle",
			Database:  "commons",
		},
		Identity: IdentityConfig{
			PrivateKeyPath: "./keys/private.pem",
			PublicKeyPath:  "./keys/public.pem",
			ExpirationMins: 15,
			Issuer:         "api.medcircle.health",
		},
		Jobs: JobsConfig{
			StrikeSweepInterval:     time.Hour,
			CascadeRecoveryInterval: 5 * time.Minute,
			CascadeRecoveryGrace:    2 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Rate:   100,
			Window: time.Minute,
			Burst:  20,
		},
		Idempotency: IdempotencyConfig{
			TTL: 24 * time.Hour,
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := validBaseConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidServerEnv(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "invalid"

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for invalid SERVER_ENV")
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
		t.Error("expected error for missing SERVER_PORT")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected error to mention SERVER_PORT, got: %v", err)
	}
}

func TestConfig_Validate_EmptyAllowedOrigins(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.AllowedOrigins = nil

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for empty CORS_ALLOWED_ORIGINS")
	}
	if !strings.Contains(err.Error(), "CORS_ALLOWED_ORIGINS") {
		t.Errorf("expected error to mention CORS_ALLOWED_ORIGINS, got: %v", err)
	}
}

func TestConfig_Validate_MissingDatabaseFields(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Database.Host = ""
	cfg.Database.Namespace = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database fields")
	}
	if !strings.Contains(err.Error(), "DB_HOST") {
		t.Errorf("expected error to mention DB_HOST, got: %v", err)
	}
	if !strings.Contains(err.Error(), "DB_NAMESPACE") {
		t.Errorf("expected error to mention DB_NAMESPACE, got: %v", err)
	}
}

func TestConfig_Validate_InvalidExpiration(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Identity.ExpirationMins = 0

	err := cfg.Validate()
	if err == nil {
		t.Error("expected error for zero IDENTITY_EXPIRATION_MINS")
	}
	if !strings.Contains(err.Error(), "IDENTITY_EXPIRATION_MINS") {
		t.Errorf("expected error to mention IDENTITY_EXPIRATION_MINS, got: %v", err)
	}
}

func TestConfig_Validate_ProductionRequiresSigningKeys(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Env = "production"
	cfg.Identity.PrivateKeyPath = ""
	cfg.Identity.PublicKeyPath = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing signing keys in production")
	}
	if !strings.Contains(err.Error(), "IDENTITY_PRIVATE_KEY_PATH") {
		t.Errorf("expected error to mention IDENTITY_PRIVATE_KEY_PATH, got: %v", err)
	}
	if !strings.Contains(err.Error(), "IDENTITY_PUBLIC_KEY_PATH") {
		t.Errorf("expected error to mention IDENTITY_PUBLIC_KEY_PATH, got: %v", err)
	}
}

func TestConfig_Validate_DevelopmentAllowsMissingKeys(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Identity.PrivateKeyPath = ""
	cfg.Identity.PublicKeyPath = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected missing keys to be allowed in development, got: %v", err)
	}
}

func TestConfig_Validate_InvalidJobIntervals(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Jobs.StrikeSweepInterval = 0
	cfg.Jobs.CascadeRecoveryInterval = -time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid job intervals")
	}
	if !strings.Contains(err.Error(), "STRIKE_SWEEP_INTERVAL") {
		t.Errorf("expected error to mention STRIKE_SWEEP_INTERVAL, got: %v", err)
	}
	if !strings.Contains(err.Error(), "CASCADE_RECOVERY_INTERVAL") {
		t.Errorf("expected error to mention CASCADE_RECOVERY_INTERVAL, got: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.Namespace != "medcircle" {
		t.Errorf("expected default namespace medcircle, got %s", cfg.Database.Namespace)
	}
	if cfg.Database.Database != "commons" {
		t.Errorf("expected default database commons, got %s", cfg.Database.Database)
	}
	if cfg.Identity.Issuer != "api.medcircle.health" {
		t.Errorf("expected default issuer api.medcircle.health, got %s", cfg.Identity.Issuer)
	}
	if cfg.Jobs.StrikeSweepInterval != time.Hour {
		t.Errorf("expected default strike sweep interval 1h, got %v", cfg.Jobs.StrikeSweepInterval)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAMESPACE", "staging")
	t.Setenv("STRIKE_SWEEP_INTERVAL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Database.Namespace != "staging" {
		t.Errorf("expected namespace staging, got %s", cfg.Database.Namespace)
	}
	if cfg.Jobs.StrikeSweepInterval != 30*time.Minute {
		t.Errorf("expected strike sweep interval 30m, got %v", cfg.Jobs.StrikeSweepInterval)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := validBaseConfig()
	if !cfg.IsDevelopment() {
		t.Error("expected development config to report IsDevelopment")
	}
	cfg.Server.Env = "production"
	if cfg.IsDevelopment() {
		t.Error("expected production config to not report IsDevelopment")
	}
	if !cfg.IsProduction() {
		t.Error("expected production config to report IsProduction")
	}
}
