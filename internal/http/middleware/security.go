// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders. Three postures are in use:
//
//   - global: baseline hardening on every response, plus HSTS when enabled
//   - admin: no-store caching and a CSP that forbids any active content
//   - script: the client script is loaded by host sites on other origins,
//     so it is marked cross-origin readable
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultHSTSMaxAge = 180 * 24 * time.Hour
	permissionsPolicy = "geolocation=(), microphone=(), camera=(), payment=()"

	// AdminCSP denies every resource type and framing. Admin responses are
	// JSON or CSV and never render.
	AdminCSP = "default-src 'none'; frame-ancestors 'none'"
)

// SecurityOptions configures SecurityHeaders.
//
// The zero value sends only the baseline headers. The router builds three
// postures from it: the global one (HSTS and policies), the admin one
// (NoStore and AdminCSP) and the one for the client script
// (CrossOriginResource).
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests. Only
	// enable it when the hop between proxy and app is HTTPS too.
	EnableHSTS bool
	HSTSMaxAge time.Duration // 180 days when zero

	// NoStore marks responses uncacheable.
	NoStore bool
	// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
	// ContentSecurityPolicy is sent verbatim when non-empty.
	ContentSecurityPolicy string
	// CrossOriginResource sets Cross-Origin-Resource-Policy: cross-origin.
	CrossOriginResource bool
}

// SecurityHeaders returns middleware that writes the headers opt asks for.
//
// Behavior:
//   - Always sets:
//     X-Content-Type-Options: nosniff
//     X-Frame-Options: DENY
//     Referrer-Policy: no-referrer
//   - With EnablePolicy: Permissions-Policy and
//     X-Permitted-Cross-Domain-Policies: none
//   - With ContentSecurityPolicy: that value, verbatim
//   - With CrossOriginResource: Cross-Origin-Resource-Policy: cross-origin
//   - With NoStore: Cache-Control: no-store, Pragma: no-cache, Expires: 0
//   - With EnableHSTS on an HTTPS request (TLS or X-Forwarded-Proto):
//     Strict-Transport-Security: max-age=<seconds>; includeSubDomains; preload
//   - When a request ID is present, X-Request-ID is appended to
//     Access-Control-Expose-Headers so browser clients can quote it.
//
// Headers are written before the handler runs, so a handler may still
// override them (the client script sets its own Cache-Control).
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", permissionsPolicy)
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", opt.ContentSecurityPolicy)
		}
		if opt.CrossOriginResource {
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}

		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers unless it is
// already listed.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	for _, v := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(v), name) {
			return
		}
	}
	if cur == "" {
		h.Set(key, name)
		return
	}
	h.Set(key, cur+", "+name)
}

// isHTTPS reports whether the request arrived over TLS, directly or behind a
// proxy that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
