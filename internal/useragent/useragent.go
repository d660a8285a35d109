// Package useragent classifies User-Agent headers as legitimate browsers,
// known good crawlers, or bot and attack-tool signatures.
package useragent

import (
	"regexp"
	"strings"
)

const (
	minLength     = 10
	maxDigitRatio = 0.5
	reasonShort   = "User-Agent empty or too short"
	reasonDigits  = "User-Agent contains excessive numbers"
	reasonSQL     = "User-Agent contains SQL injection attempt"
	reasonXSS     = "User-Agent contains XSS attempt"
	reasonBlocked = "User-Agent matches blacklist pattern: "
)

// Allowed are crawlers that must never be blocked: search engines, social
// previewers, uptime monitors, feed readers and validators. A match skips the
// blacklist entirely.
var Allowed = []string{
	"googlebot", "google-site-verification", "bingbot", "msnbot", "yahoo! slurp",
	"duckduckbot", "baiduspider", "yandexbot", "sogou",
	"facebookexternalhit", "facebot", "twitterbot", "linkedinbot", "pinterest",
	"whatsapp", "telegrambot", "slackbot",
	"pingdom", "uptimerobot", "statuscake", "newrelic", "datadog",
	"feedly", "feedburner", "bloglines",
	"w3c_validator", "w3c_css_validator", "w3c-checklink",
	"applebot", "amazonbot", "slurp",
}

// Blocked are lower-case signatures of scrapers, spam bots and attack tools.
var Blocked = []string{
	// spam bots and harvesters
	"sitebot", "spambot", "spam bot", "spammer", "harvester", "email collector",
	"email extractor", "emailcollector", "emailextractor", "emailsiphon",
	"emailwolf", "extractorpro", "copyrightcheck",
	// site copiers and HTTP libraries
	"httrack", "teleport", "webcopier", "webcopy", "offline explorer",
	"webripper", "webzip", "webmirror", "wget", "curl", "libwww",
	"python-requests", "python-urllib",
	// scanners
	"masscan", "nmap", "nikto", "sqlmap", "acunetix", "webinspect", "brutus",
	"hydra", "havij",
	// outdated crawler versions used by impersonators
	"googlebot/1.", "msnbot/0.",
	// SEO crawlers
	"semrush", "ahrefs", "majestic", "mj12bot", "rogerbot", "exabot", "dotbot",
	"gigabot",
	// content theft
	"psbot", "asterias", "blackwidow", "blowfish", "bullseye", "bunnyslippers",
	"cegbfeieh", "cheesebot", "cherrypicker", "chinaclaw", "cosmos", "crescent",
	"disco",
	// auto posters
	"xrumer", "senuke", "bookmarkdemon", "autoseosubmitter", "submitwolf",
	// generic
	"bot@", "spider@", "crawler@", ".ru)", "mozilla/1.", "mozilla/2.", "mozilla/3.",
}

var (
	sqlRe = regexp.MustCompile(`(?i)\b(?:union|select|insert|update|delete|drop|create|alter)\b`)
	xssRe = regexp.MustCompile(`(?i)<script|javascript:|onerror=`)
)

// Result is the outcome of Check.
type Result struct {
	Blocked bool
	Reason  string
}

// Check classifies ua. The allowlist is consulted before the blacklist so
// that real crawlers are never blocked by a generic signature.
func Check(ua string) Result {
	lower := strings.ToLower(strings.TrimSpace(ua))
	if len(lower) < minLength {
		return Result{Blocked: true, Reason: reasonShort}
	}
	for _, p := range Allowed {
		if strings.Contains(lower, p) {
			return Result{}
		}
	}
	for _, p := range Blocked {
		if strings.Contains(lower, p) {
			return Result{Blocked: true, Reason: reasonBlocked + p}
		}
	}

	digits := 0
	for i := 0; i < len(lower); i++ {
		if lower[i] >= '0' && lower[i] <= '9' {
			digits++
		}
	}
	if float64(digits)/float64(len(lower)) > maxDigitRatio {
		return Result{Blocked: true, Reason: reasonDigits}
	}
	if sqlRe.MatchString(ua) {
		return Result{Blocked: true, Reason: reasonSQL}
	}
	if xssRe.MatchString(ua) {
		return Result{Blocked: true, Reason: reasonXSS}
	}
	return Result{}
}

// IsAllowedCrawler reports whether ua belongs to a known good crawler.
func IsAllowedCrawler(ua string) bool {
	lower := strings.ToLower(ua)
	for _, p := range Allowed {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
