// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string
	// LogFormat selects the log handler ("json" or "text").
	LogFormat string

	// CredentialFile is the path to the credential table loaded at startup.
	CredentialFile string
	// SkillsDir is the directory scanned for skill manifests.
	SkillsDir string
	// PermissionFile is the path to the persisted permission grant table.
	PermissionFile string
	// StateDir holds process state such as the session signing keypair.
	StateDir string

	// SessionTokenExpiration is the lifetime of an issued session token.
	SessionTokenExpiration time.Duration
	// MinCredentialLength is the minimum accepted credential key length.
	MinCredentialLength int

	// RateLimitWindow is the sliding window applied to per-client rate limits.
	RateLimitWindow time.Duration
	// RateLimitAdmin is the admin tier request limit per window.
	RateLimitAdmin int
	// RateLimitUser is the user tier request limit per window.
	RateLimitUser int
	// RateLimitLocal is the local tier request limit per window.
	RateLimitLocal int
	// RateLimitDemo is the demo tier request limit per window.
	RateLimitDemo int

	// ReputationFailureWindow is how long failed attempts count against an IP.
	ReputationFailureWindow time.Duration
	// ReputationShortThreshold is the failure count that triggers a short block.
	ReputationShortThreshold int
	// ReputationShortBlock is the short block duration.
	ReputationShortBlock time.Duration
	// ReputationLongThreshold is the failure count that triggers a long block.
	ReputationLongThreshold int
	// ReputationLongBlock is the long block duration.
	ReputationLongBlock time.Duration

	// SandboxDefaultTimeout is applied when a skill call carries no timeout.
	SandboxDefaultTimeout time.Duration
	// SandboxMaxTimeout caps caller-supplied skill timeouts.
	SandboxMaxTimeout time.Duration

	// EventLogCapacity is the size of the bounded in-memory security event log.
	EventLogCapacity int

	// RateLimitSessionEnabled indicates whether the per-IP limiter on the session endpoint is enabled.
	RateLimitSessionEnabled bool
	// RateLimitSessionRequestsPerSec is the per-IP request rate for the session endpoint.
	RateLimitSessionRequestsPerSec float64
	// RateLimitSessionBurst is the per-IP burst size for the session endpoint.
	RateLimitSessionBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// DBDriver is the audit archive database driver ("postgres", "mysql"); empty disables the archive.
	DBDriver string
	// DBConnectionString is the connection string for the audit archive database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// AuditSigningKey is the base64 key material used to sign archived security events.
	AuditSigningKey string

	// KMSKeyURI is the URI of the key that wraps the session signing seed.
	KMSKeyURI string
	// SigningSeedEncrypted is the base64 KMS-encrypted session signing seed.
	SigningSeedEncrypted string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel:  env.GetString("LOG_LEVEL", "info"),
		LogFormat: env.GetString("LOG_FORMAT", "json"),

		// File layout
		CredentialFile: env.GetString("CREDENTIAL_FILE", "credentials.yaml"),
		SkillsDir:      env.GetString("SKILLS_DIR", "skills"),
		PermissionFile: env.GetString("PERMISSION_FILE", "permissions.json"),
		StateDir:       env.GetString("STATE_DIR", "state"),

		// Sessions
		SessionTokenExpiration: env.GetDuration("SESSION_TOKEN_EXPIRATION_HOURS", 24, time.Hour),
		MinCredentialLength:    env.GetInt("MIN_CREDENTIAL_LENGTH", 16),

		// Sliding-window rate limits per tier
		RateLimitWindow: env.GetDuration("RATE_LIMIT_WINDOW_SECONDS", 3600, time.Second),
		RateLimitAdmin:  env.GetInt("RATE_LIMIT_ADMIN", 1000),
		RateLimitUser:   env.GetInt("RATE_LIMIT_USER", 100),
		RateLimitLocal:  env.GetInt("RATE_LIMIT_LOCAL", 200),
		RateLimitDemo:   env.GetInt("RATE_LIMIT_DEMO", 50),

		// IP reputation
		ReputationFailureWindow:  env.GetDuration("REPUTATION_FAILURE_WINDOW_MINUTES", 60, time.Minute),
		ReputationShortThreshold: env.GetInt("REPUTATION_SHORT_THRESHOLD", 5),
		ReputationShortBlock:     env.GetDuration("REPUTATION_SHORT_BLOCK_MINUTES", 15, time.Minute),
		ReputationLongThreshold:  env.GetInt("REPUTATION_LONG_THRESHOLD", 10),
		ReputationLongBlock:      env.GetDuration("REPUTATION_LONG_BLOCK_MINUTES", 30, time.Minute),

		// Sandbox
		SandboxDefaultTimeout: env.GetDuration("SANDBOX_DEFAULT_TIMEOUT_SECONDS", 10, time.Second),
		SandboxMaxTimeout:     env.GetDuration("SANDBOX_MAX_TIMEOUT_SECONDS", 60, time.Second),

		// Security event log
		EventLogCapacity: env.GetInt("EVENT_LOG_CAPACITY", 1000),

		// Rate Limiting for Session Endpoint (IP-based, unauthenticated)
		RateLimitSessionEnabled:        env.GetBool("RATE_LIMIT_SESSION_ENABLED", true),
		RateLimitSessionRequestsPerSec: env.GetFloat64("RATE_LIMIT_SESSION_REQUESTS_PER_SEC", 5.0),
		RateLimitSessionBurst:          env.GetInt("RATE_LIMIT_SESSION_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "pasban"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Audit archive database (optional)
		DBDriver:             env.GetString("DB_DRIVER", ""),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Audit archive signing
		AuditSigningKey: env.GetString("AUDIT_SIGNING_KEY", ""),

		// KMS-wrapped session signing seed (optional)
		KMSKeyURI:            env.GetString("KMS_KEY_URI", ""),
		SigningSeedEncrypted: env.GetString("SIGNING_SEED_ENCRYPTED", ""),
	}
}

// ArchiveEnabled reports whether the SQL audit archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DBDriver != "" && c.DBConnectionString != ""
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
