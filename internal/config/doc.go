// Package config manages application configuration for the Commons API.
//
// The config package loads and validates configuration from environment
// variables. All configuration is centralized here to provide a single
// source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - IdentityConfig: access token signing and validation settings
//   - JobsConfig: background job intervals (strike sweep, cascade recovery)
//   - RateLimitConfig: per-caller request budget
//   - IdempotencyConfig: replay cache retention
//
// # Default Values
//
// Sensible defaults are provided for development, so a bare
// `go run ./cmd/server` against a local SurrealDB works without any
// environment setup. Production deployments must provide signing keys
// and are checked by Validate.
package config
