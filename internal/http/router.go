// Package httpapi wires the HTTP transport (Gin) to the gatekeeper's
// handlers and middleware: tracing, correlation IDs, access logging, panic
// recovery, metrics, CORS, security headers, edge rate limiting, compression
// and admin authentication.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-form-gatekeeper/docs"
	"github.com/tbourn/go-form-gatekeeper/internal/config"
	"github.com/tbourn/go-form-gatekeeper/internal/http/handlers"
	"github.com/tbourn/go-form-gatekeeper/internal/http/middleware"
)

// maxBodyBytes caps every request body. Form posts are small; the cap also
// bounds multipart parsing.
const maxBodyBytes = 1 << 20

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		handlers.CronTokenHeader, "X-Request-ID",
	}
)

// RegisterRoutes attaches all middleware and HTTP endpoints to r and mounts
// the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Access log (RedactingLogger, or the unredacted Logger in debug mode)
//  4. Recovery: capture panics after the logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and security headers
//
// The edge rate limiter is installed per group: on the public routes it keys
// by client address, on the admin group it runs after AdminAuth and keys by
// administrator.
func RegisterRoutes(r *gin.Engine, deps handlers.Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	if cfg.GinMode == gin.DebugMode {
		r.Use(middleware.Logger())
	} else {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	}
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAdminOrIP(deps.Resolver))

	r.GET("/static/gatekeeper.js",
		middleware.SecurityHeaders(middleware.SecurityOptions{CrossOriginResource: true}),
		gzip.Gzip(gzip.DefaultCompression),
		h.Script,
	)

	api := groupWithPrefix(r, cfg.APIBasePath)

	forms := api.Group("/forms/:type", rl.Handler())
	{
		forms.GET("/protection", h.FormProtection)
		forms.POST("/submit", h.SubmitForm)
		forms.POST("/validate", h.ValidateForm)
	}

	cron := api.Group("/cron", rl.Handler())
	{
		cron.GET("/cleanup", h.RunCleanup)
		cron.POST("/cleanup", h.RunCleanup)
	}

	api.POST("/admin/login", rl.Handler(), h.AdminLogin)

	admin := api.Group("/admin",
		middleware.AdminAuth(deps.Admin),
		rl.Handler(),
		middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true, ContentSecurityPolicy: middleware.AdminCSP}),
		gzip.Gzip(gzip.DefaultCompression),
	)
	{
		admin.GET("/events", h.ListEvents)
		admin.GET("/events/export", h.ExportEvents)
		admin.DELETE("/events", h.PurgeEvents)

		admin.GET("/stats", h.Stats)
		admin.GET("/stats/daily", h.DailyStats)

		admin.GET("/lists", h.ListEntries)
		admin.POST("/lists", h.AddListEntry)
		admin.DELETE("/lists/:id", h.DeleteListEntry)
		admin.POST("/lists/:id/toggle", h.ToggleListEntry)

		admin.GET("/preferences", h.GetPreferences)
		admin.PUT("/preferences", h.UpdatePreferences)
		admin.POST("/cron-token", h.RotateCronToken)
	}
}

// corsMiddleware returns the CORS posture. Without an allowlist any origin
// may call the API but never with credentials. With one, listed origins are
// echoed and may send cookies, which the browser submit route needs for the
// session and test cookies.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	if len(origins) == 0 {
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     corsMethods,
				AllowHeaders:     corsHeaders,
				ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Reads past the cap fail downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
