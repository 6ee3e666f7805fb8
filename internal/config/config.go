// Package config loads coursestats settings from environment variables.
// Defaults live in struct tags and every setting is validated on startup so
// misconfiguration fails before the dataset is touched.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
	Report   ReportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatasetConfig points at the course CSV.
type DatasetConfig struct {
	// Path is the CSV file to analyze (required)
	Path string `env:"DATASET_PATH" envAlt:"COURSES_CSV" required:"true"`

	// Cache reuses the parsed snapshot while the file is unchanged (default: true)
	Cache bool `env:"DATASET_CACHE" default:"true"`
}

// DatabaseConfig holds the optional PostgreSQL archive settings.
// Archiving is disabled when URL is empty.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// ArchiveAPIKeys, when set, must be presented in X-API-Key to archive
	ArchiveAPIKeys []string `env:"ARCHIVE_API_KEYS"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ReportConfig holds the query arguments used by the text report.
type ReportConfig struct {
	TopK  int    `env:"REPORT_TOP_K" default:"10"`
	TopBy string `env:"REPORT_TOP_BY" default:"hours"`

	SearchSubject    string  `env:"REPORT_SEARCH_SUBJECT" default:"computer"`
	SearchMinAudited float64 `env:"REPORT_SEARCH_MIN_AUDITED" default:"20"`
	SearchMaxHours   float64 `env:"REPORT_SEARCH_MAX_HOURS" default:"700"`

	RecommendAge      int `env:"REPORT_RECOMMEND_AGE" default:"25"`
	RecommendGender   int `env:"REPORT_RECOMMEND_GENDER" default:"1"`
	RecommendBachelor int `env:"REPORT_RECOMMEND_BACHELOR" default:"1"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
