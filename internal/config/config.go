package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Identity    IdentityConfig
	Jobs        JobsConfig
	RateLimit   RateLimitConfig
	Idempotency IdempotencyConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// IdentityConfig holds access token signing settings
type IdentityConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	ExpirationMins int
	Issuer         string
}

// JobsConfig holds background job scheduling settings
type JobsConfig struct {
	StrikeSweepInterval     time.Duration
	CascadeRecoveryInterval time.Duration
	CascadeRecoveryGrace    time.Duration
}

// RateLimitConfig holds request rate limiting settings
type RateLimitConfig struct {
	Rate   int
	Window time.Duration
	Burst  int
}

// IdempotencyConfig holds idempotency replay cache settings
type IdempotencyConfig struct {
	TTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "medcircle"),
			Database:  getEnv("DB_DATABASE", "commons"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Identity: IdentityConfig{
			PrivateKeyPath: getEnv("IDENTITY_PRIVATE_KEY_PATH", "./keys/private.pem"),
			PublicKeyPath:  getEnv("IDENTITY_PUBLIC_KEY_PATH", "./keys/public.pem"),
			ExpirationMins: getIntEnv("IDENTITY_EXPIRATION_MINS", 15),
			Issuer:         getEnv("IDENTITY_ISSUER", "api.medcircle.health"),
		},
		Jobs: JobsConfig{
			StrikeSweepInterval:     getDurationEnv("STRIKE_SWEEP_INTERVAL", time.Hour),
			CascadeRecoveryInterval: getDurationEnv("CASCADE_RECOVERY_INTERVAL", 5*time.Minute),
			CascadeRecoveryGrace:    getDurationEnv("CASCADE_RECOVERY_GRACE", 2*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Rate:   getIntEnv("RATE_LIMIT_RATE", 100),
			Window: getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Burst:  getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Idempotency: IdempotencyConfig{
			TTL: getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// Token signing keys are mandatory in production
	if c.IsProduction() {
		if c.Identity.PrivateKeyPath == "" {
			errs = append(errs, errors.New("IDENTITY_PRIVATE_KEY_PATH is required in production"))
		}
		if c.Identity.PublicKeyPath == "" {
			errs = append(errs, errors.New("IDENTITY_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.Identity.ExpirationMins <= 0 {
		errs = append(errs, errors.New("IDENTITY_EXPIRATION_MINS must be positive"))
	}

	// Jobs validation
	if c.Jobs.StrikeSweepInterval <= 0 {
		errs = append(errs, errors.New("STRIKE_SWEEP_INTERVAL must be positive"))
	}
	if c.Jobs.CascadeRecoveryInterval <= 0 {
		errs = append(errs, errors.New("CASCADE_RECOVERY_INTERVAL must be positive"))
	}
	if c.Jobs.CascadeRecoveryGrace < 0 {
		errs = append(errs, errors.New("CASCADE_RECOVERY_GRACE must not be negative"))
	}

	// Rate limit validation
	if c.RateLimit.Rate <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RATE must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
