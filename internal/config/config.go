// Package config provides centralized configuration management for the
// dashboard. Settings come from environment variables (optionally seeded from
// a .env file) and are validated on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Table    TableConfig
	Mutation MutationConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Audit    AuditConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// TableConfig holds defaults for dashboard tables.
type TableConfig struct {
	// PageSize is the initial number of rows per page (default: 10)
	PageSize int `env:"TABLE_PAGE_SIZE" default:"10"`

	// MaxPageSize bounds the page size a client may request (default: 100)
	MaxPageSize int `env:"TABLE_MAX_PAGE_SIZE" default:"100"`

	// Debounce is the idle period before typed filter input is applied (default: 500ms)
	Debounce time.Duration `env:"TABLE_DEBOUNCE" default:"500ms"`

	// SuggestionLimit caps text filter suggestions (default: 5000)
	SuggestionLimit int `env:"TABLE_SUGGESTION_LIMIT" default:"5000"`
}

// MutationConfig holds bulk mutation settings.
type MutationConfig struct {
	// MaxConcurrent is the maximum number of bulk deletes running at once (default: 4)
	MaxConcurrent int `env:"MUTATION_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `env:"MUTATION_MAX_WAIT_TIME" default:"10s"`

	// Timeout bounds a single bulk delete (default: 30s)
	Timeout time.Duration `env:"MUTATION_TIMEOUT" default:"30s"`

	// MaxIDs bounds the ids accepted by one bulk delete (default: 1000)
	MaxIDs int `env:"MUTATION_MAX_IDS" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// MutationLimit is requests per minute for delete endpoints (default: 20)
	MutationLimit int `env:"RATE_LIMIT_MUTATION" default:"20"`

	// LoginLimit is requests per minute for credential login (default: 10)
	LoginLimit int `env:"RATE_LIMIT_LOGIN" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// AuthConfig holds session and route guard settings.
type AuthConfig struct {
	// Secret signs session tokens (required, at least 32 bytes)
	Secret string `env:"AUTH_SECRET" required:"true"`

	// SessionTTL is how long a session cookie stays valid (default: 12h)
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" default:"12h"`

	// CookieName is the session cookie name (default: crefinex_session)
	CookieName string `env:"AUTH_COOKIE_NAME" default:"crefinex_session"`

	// SecureCookie sets the Secure flag on the session cookie (default: true)
	SecureCookie bool `env:"AUTH_SECURE_COOKIE" default:"true"`

	// LoginPath is where anonymous users are redirected (default: /auth/login)
	LoginPath string `env:"AUTH_LOGIN_PATH" default:"/auth/login"`

	// DefaultRedirect is where signed-in users land (default: /dashboard)
	DefaultRedirect string `env:"AUTH_DEFAULT_REDIRECT" default:"/dashboard"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL ships logs to a Seq server when set
	SeqURL string `env:"LOG_SEQ_URL"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept (default: 365)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"365"`

	// PruneInterval is how often expired entries are removed (default: 24h)
	PruneInterval time.Duration `env:"AUDIT_PRUNE_INTERVAL" default:"24h"`

	// BatchSize is rows removed per prune batch (default: 5000)
	BatchSize int `env:"AUDIT_BATCH_SIZE" default:"5000"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
