// Package config provides centralized configuration for the catalog service.
// Values come from environment variables with defaults declared in struct
// tags, and the result is validated on startup to fail fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envAlt:"PORT" default:"8000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds listing, search and readiness requests through
	// chi's Timeout middleware. Uploads use Upload.RequestTimeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StoreConfig selects the catalog backend.
type StoreConfig struct {
	// Driver is "postgres" (default) or "memory". The memory driver keeps the
	// catalog in process and is meant for local runs and demos.
	Driver string `env:"STORE_DRIVER" default:"postgres"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// URL is required when Store.Driver is postgres.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds CSV upload settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted request body in bytes (default: 10MB).
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the number of uploads processed at the same time.
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an upload waits for a free slot before 503.
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// RequestTimeout bounds POST /upload, including the connection read and
	// write deadlines, so a large file's summary still reaches the client.
	RequestTimeout time.Duration `env:"UPLOAD_REQUEST_TIMEOUT" default:"5m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute allowed on POST /upload.
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
	Burst       int `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds proxy and CORS settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// CacheConfig holds listing cache settings.
type CacheConfig struct {
	// RedisURL enables the Redis listing cache when set, e.g.
	// redis://localhost:6379/0.
	RedisURL string        `env:"CACHE_REDIS_URL"`
	TTL      time.Duration `env:"CACHE_TTL" default:"5m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CacheEnabled reports whether a Redis listing cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.Cache.RedisURL != ""
}
