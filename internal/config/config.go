// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes process settings such
// as server timeouts, logging, storage backends, admin credentials, and
// observability. Pipeline preferences (thresholds, enabled checks) live in the
// database and are modeled by Settings in settings.go.
package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "form-gatekeeper")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// SessionConfig selects and tunes the visitor session store.
type SessionConfig struct {
	Store        string        // SESSION_STORE: memory|redis
	RedisURL     string        // REDIS_URL (required for redis)
	CookieName   string        // SESSION_COOKIE_NAME
	CookieSecure bool          // SESSION_COOKIE_SECURE
	TTL          time.Duration // SESSION_TTL: idle lifetime of stored state
}

// AdminConfig holds the single administrator's credentials.
type AdminConfig struct {
	Username     string        // ADMIN_USERNAME
	PasswordHash string        // ADMIN_PASSWORD_HASH (bcrypt); empty disables login
	JWTSecret    string        // ADMIN_JWT_SECRET
	TokenTTL     time.Duration // ADMIN_TOKEN_TTL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBDriver    string // sqlite|postgres
	DBPath      string // SQLite path
	DatabaseURL string // Postgres DSN

	// App
	AppVersion        string        // feeds the daily field-name hash
	SiteURL           string        // own origin for referer checks
	SettingsFile      string        // optional YAML preferences seed
	GeoIPPath         string        // optional GeoLite2/GeoIP2 country database
	TrustProxyHeaders bool          // resolve client IP from forwarding headers
	CleanupInterval   time.Duration // background cleanup period
	LogWriteTimeout   time.Duration // bound on event-log writes and rate queries

	// Edge rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	Session SessionConfig
	Admin   AdminConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBPath:      getenv("DB_PATH", "gatekeeper.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		// App
		AppVersion:        getenv("APP_VERSION", "1.3.0"),
		SiteURL:           strings.TrimSpace(getenv("SITE_URL", "")),
		SettingsFile:      getenv("SETTINGS_FILE", ""),
		GeoIPPath:         getenv("GEOIP_DB", ""),
		TrustProxyHeaders: getbool("TRUST_PROXY_HEADERS", true),
		CleanupInterval:   getdur("CLEANUP_INTERVAL", time.Hour),
		LogWriteTimeout:   getdur("LOG_WRITE_TIMEOUT", 2*time.Second),

		// Edge rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		Session: SessionConfig{
			Store:        strings.ToLower(getenv("SESSION_STORE", "memory")),
			RedisURL:     getenv("REDIS_URL", ""),
			CookieName:   getenv("SESSION_COOKIE_NAME", "gk_sid"),
			CookieSecure: getbool("SESSION_COOKIE_SECURE", false),
			TTL:          getdur("SESSION_TTL", 2*time.Hour),
		},
		Admin: AdminConfig{
			Username:     getenv("ADMIN_USERNAME", "admin"),
			PasswordHash: getenv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getenv("ADMIN_JWT_SECRET", ""),
			TokenTTL:     getdur("ADMIN_TOKEN_TTL", 12*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "form-gatekeeper"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	switch cfg.Session.Store {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Session.RedisURL) == "" {
			return cfg, errors.New("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return cfg, errors.New("SESSION_STORE must be one of: memory, redis")
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		return cfg, errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.AppVersion) == "" {
		return cfg, errors.New("APP_VERSION must not be empty")
	}
	if cfg.SiteURL != "" {
		if u, err := url.Parse(cfg.SiteURL); err != nil || u.Host == "" {
			return cfg, errors.New("SITE_URL must be an absolute URL")
		}
	}
	if cfg.Admin.PasswordHash != "" && len(cfg.Admin.JWTSecret) < 16 {
		return cfg, errors.New("ADMIN_JWT_SECRET must be at least 16 bytes when admin login is enabled")
	}
	if cfg.Admin.TokenTTL <= 0 {
		return cfg, errors.New("ADMIN_TOKEN_TTL must be > 0")
	}
	if cfg.CleanupInterval <= 0 {
		return cfg, errors.New("CLEANUP_INTERVAL must be > 0")
	}
	if cfg.LogWriteTimeout <= 0 {
		return cfg, errors.New("LOG_WRITE_TIMEOUT must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if b, err := parseBool(v); err == nil {
			return b
		}
	}
	return def
}

// parseBool accepts the usual spellings of true/false (case-insensitive).
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, errors.New("not a boolean: " + v)
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
