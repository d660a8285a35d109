package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// Storage / app
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("SITE_URL", "https://www.example.com")
	t.Setenv("APP_VERSION", "2.0.0")
	t.Setenv("CLEANUP_INTERVAL", "15m")

	// unparseable values fall back to defaults
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Sessions / admin
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_COOKIE_NAME", "sid")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("ADMIN_JWT_SECRET", "0123456789abcdef0123")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging / Docs
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}

	// Storage / app
	if cfg.DBDriver != "sqlite" || cfg.DBPath != "db.sqlite" || cfg.SiteURL != "https://www.example.com" ||
		cfg.AppVersion != "2.0.0" || cfg.CleanupInterval != 15*time.Minute {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}

	// Rate limiting (parse fallback to defaults)
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// Sessions / admin
	if cfg.Session.Store != "redis" || cfg.Session.RedisURL == "" || cfg.Session.CookieName != "sid" {
		t.Fatalf("session unexpected: %+v", cfg.Session)
	}
	if cfg.Admin.Username != "admin" || cfg.Admin.TokenTTL != 12*time.Hour {
		t.Fatalf("admin unexpected: %+v", cfg.Admin)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// --- Load validations (each case trips exactly one check) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"blank port", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"header bytes", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"blank db path", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"postgres without dsn", map[string]string{"DB_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"redis without url", map[string]string{"SESSION_STORE": "redis"}, "REDIS_URL"},
		{"relative site url", map[string]string{"SITE_URL": "example.com/path"}, "SITE_URL"},
		{"short jwt secret", map[string]string{"ADMIN_PASSWORD_HASH": "$2a$10$x", "ADMIN_JWT_SECRET": "short"}, "ADMIN_JWT_SECRET"},
		{"negative rps", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"zero burst", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"negative hsts", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"zero cleanup interval", map[string]string{"CLEANUP_INTERVAL": "0s"}, "CLEANUP_INTERVAL"},
		{"sample ratio", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GK_EMPTY", "")
	t.Setenv("GK_STR", "val")
	t.Setenv("GK_FLOAT", "0.25")
	t.Setenv("GK_INT", "42")
	t.Setenv("GK_DUR", "150ms")
	t.Setenv("GK_BAD", "nope")

	if getenv("GK_EMPTY", "d") != "d" || getenv("GK_STR", "d") != "val" {
		t.Fatal("getenv")
	}
	if getfloat("GK_FLOAT", 0) != 0.25 || getfloat("GK_BAD", 1.5) != 1.5 {
		t.Fatal("getfloat")
	}
	if getint("GK_INT", 0) != 42 || getint("GK_BAD", 7) != 7 {
		t.Fatal("getint")
	}
	if getdur("GK_DUR", time.Second) != 150*time.Millisecond || getdur("GK_BAD", 2*time.Second) != 2*time.Second {
		t.Fatal("getdur")
	}
}

func TestGetbool(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "TRUE": true, " yes ": true, "Y": true, "on": true,
		"0": false, "false": false, "FALSE": false, " no ": false, "N": false, "Off": false,
	}
	for v, want := range cases {
		t.Setenv("GK_BOOL", v)
		// the default is the opposite so a fallback would show
		if got := getbool("GK_BOOL", !want); got != want {
			t.Fatalf("getbool(%q) = %v; want %v", v, got, want)
		}
	}
	t.Setenv("GK_BOOL", "maybe")
	if !getbool("GK_BOOL", true) || getbool("GK_BOOL", false) {
		t.Fatal("unparseable value must fall back to the default")
	}
	t.Setenv("GK_BOOL", "")
	if !getbool("GK_BOOL", true) {
		t.Fatal("empty value must fall back to the default")
	}
}

func TestSplitCSV(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV(\"\") = %#v, want nil", out)
	}
	if got := splitCSV(" https://a.com, ,https://b.com ,"); !reflect.DeepEqual(got, []string{"https://a.com", "https://b.com"}) {
		t.Fatalf("splitCSV = %#v", got)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	for in, want := range map[string]string{
		"":         "/",
		" / ":      "/",
		"v1":       "/v1",
		"/api/v1/": "/api/v1",
	} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMain(m *testing.M) {
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}
