// Command server runs the form gatekeeper HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-form-gatekeeper/internal/auth"
	"github.com/tbourn/go-form-gatekeeper/internal/config"
	httpapi "github.com/tbourn/go-form-gatekeeper/internal/http"
	"github.com/tbourn/go-form-gatekeeper/internal/http/handlers"
	"github.com/tbourn/go-form-gatekeeper/internal/ipresolve"
	"github.com/tbourn/go-form-gatekeeper/internal/jobs"
	"github.com/tbourn/go-form-gatekeeper/internal/observability"
	"github.com/tbourn/go-form-gatekeeper/internal/ratelimit"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/services"
	"github.com/tbourn/go-form-gatekeeper/internal/session"
	"github.com/tbourn/go-form-gatekeeper/internal/sysutil"
)

const (
	scriptURL       = "/static/gatekeeper.js"
	shutdownTimeout = 10 * time.Second
)

// version is set at link time (-ldflags "-X main.version=...").
var version = "dev"

// @title                       Form Gatekeeper API
// @version                     1.0
// @description                 Spam and bot protection for web forms: protection fields, submission validation, admin reports and lists.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by the admin token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server terminated")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sysutil.ConfigureLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, cfg.AppVersion)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(repo.Options{
		Driver:  cfg.DBDriver,
		Path:    cfg.DBPath,
		DSN:     cfg.DatabaseURL,
		Tracing: cfg.OTEL.Enabled,
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// preferences: defaults, then the optional YAML seed; stored rows win
	var seed map[string]string
	if cfg.SettingsFile != "" {
		if seed, err = config.LoadSeedFile(cfg.SettingsFile); err != nil {
			return fmt.Errorf("settings file: %w", err)
		}
	}
	prefs := services.NewPreferenceService(db, nil, nil)
	if err := prefs.Seed(ctx, seed); err != nil {
		return fmt.Errorf("seed preferences: %w", err)
	}
	if _, err := prefs.EnsureCronToken(ctx); err != nil {
		return fmt.Errorf("cron token: %w", err)
	}
	settings, err := prefs.Load(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	store, closeStore, err := openSessionStore(ctx, cfg.Session, settings)
	if err != nil {
		return err
	}
	defer closeStore()

	var geo services.CountryResolver
	if cfg.GeoIPPath != "" {
		reader, err := geoip2.Open(cfg.GeoIPPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.GeoIPPath).Msg("geoip database unavailable, countries will not be logged")
		} else {
			defer reader.Close()
			geo = reader
		}
	}

	lists := services.NewListService(db)
	build := func(s config.Settings) *services.Gatekeeper {
		return services.NewGatekeeper(s, services.Deps{
			Store:     store,
			Counter:   ratelimit.DBCounter{DB: db},
			Lists:     lists,
			Events:    services.NewEventLog(db, geo),
			SiteURL:   cfg.SiteURL,
			Version:   cfg.AppVersion,
			ScriptURL: scriptURL,
			Timeout:   cfg.LogWriteTimeout,
		})
	}
	holder := services.NewGatekeeperHolder(build(settings))
	prefs.Holder, prefs.Build = holder, build

	cleanup := &services.CleanupService{
		DB:       db,
		Store:    store,
		Settings: func() config.Settings { return holder.Load().Settings },
	}

	admin := auth.New(cfg.Admin)
	if !admin.Enabled() {
		log.Warn().Msg("ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, handlers.Deps{
		Guard:    func() handlers.FormGuard { return holder.Load() },
		Admin:    admin,
		Reports:  services.NewReportService(db),
		Lists:    lists,
		Prefs:    prefs,
		Cleanup:  cleanup,
		Resolver: ipresolve.Resolver{TrustHeaders: cfg.TrustProxyHeaders},
		Cookies: handlers.CookieOptions{
			SessionName: cfg.Session.CookieName,
			Secure:      cfg.Session.CookieSecure,
			AdminTTL:    cfg.Admin.TokenTTL,
		},
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", cfg.AppVersion).Str("build", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := jobs.RunCleanup(gctx, cleanup, cfg.CleanupInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// openSessionStore builds the configured session store. State must outlive
// both the idle TTL and the token lifetime, so the longer of the two is used.
func openSessionStore(ctx context.Context, cfg config.SessionConfig, s config.Settings) (session.Store, func(), error) {
	ttl := cfg.TTL
	if tok := time.Duration(s.TokenExpiration) * time.Second; tok > ttl {
		ttl = tok
	}
	switch cfg.Store {
	case "redis":
		rs, err := session.NewRedis(ctx, cfg.RedisURL, ttl)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return session.NewMemory(ttl), func() {}, nil
	}
}
