// Package services – Gatekeeper
//
// This file implements the validation pipeline. A Gatekeeper is built once
// from a Settings snapshot and is immutable afterwards; changing preferences
// means building a new one (see GatekeeperHolder).
//
// Validate runs the checks in a fixed order and stops at the first rejection:
//
//   - lists (admin bypass, whitelist accept, IP blacklist)
//   - rate limit, request method, session token, field map
//   - e-mail, duplicate content
//   - content (gibberish pre-pass, keyword blacklist, analyzer)
//   - client script token, with the timing fallback when it did not run
//   - honeypot, user agent, referer, test cookie
//
// Collaborator failures (list store, rate count, event log, session store)
// never reject a submission on their own, except for the token step where a
// store failure reads as a missing session.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-form-gatekeeper/internal/config"
	"github.com/tbourn/go-form-gatekeeper/internal/content"
	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/email"
	"github.com/tbourn/go-form-gatekeeper/internal/ratelimit"
	"github.com/tbourn/go-form-gatekeeper/internal/session"
	"github.com/tbourn/go-form-gatekeeper/internal/useragent"
)

const (
	defaultCollaboratorTimeout = 2 * time.Second
	testCookieMaxAge           = 24 * time.Hour
)

var (
	alnumRe  = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	screenRe = regexp.MustCompile(`^\d+x\d+$`)

	allowedContentTypes   = []string{"application/x-www-form-urlencoded", "multipart/form-data", "text/plain"}
	requiredBrowserChecks = []string{"cookies", "screen", "timezone"}
)

// ListChecker answers the administrator list lookups the pipeline needs.
// Each method returns the matching entry value, or "" when nothing matched.
type ListChecker interface {
	Whitelisted(ctx context.Context, ip, email string) (bool, error)
	BlacklistedIP(ctx context.Context, ip string) (string, error)
	BlacklistedEmail(ctx context.Context, email string) (string, error)
	BlacklistedKeyword(ctx context.Context, text string) (string, error)
}

// EventRecorder persists one pipeline decision.
type EventRecorder interface {
	Record(ctx context.Context, sub *domain.Submission, d Decision, enhanced bool) error
}

// Deps are the collaborators a Gatekeeper is built over.
type Deps struct {
	Store   session.Store
	Counter ratelimit.Counter
	Lists   ListChecker
	Events  EventRecorder

	// SiteURL is the site's own origin, used by the referer check.
	SiteURL string
	// Version seeds the daily field-name hash.
	Version string
	// ScriptURL is where rendered forms load the client script from.
	ScriptURL string
	// Timeout bounds each rate count and event write.
	Timeout time.Duration
}

// Gatekeeper validates form submissions and prepares the protection fields
// embedded into rendered forms.
type Gatekeeper struct {
	Settings config.Settings
	Sessions *session.Manager
	Limiter  *ratelimit.LogLimiter
	Lists    ListChecker
	Events   EventRecorder

	SiteHost  string
	Version   string
	ScriptURL string
	Timeout   time.Duration
	Now       func() time.Time
}

// NewGatekeeper builds a pipeline over d configured by s.
func NewGatekeeper(s config.Settings, d Deps) *Gatekeeper {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultCollaboratorTimeout
	}
	return &Gatekeeper{
		Settings: s,
		Sessions: session.NewManager(d.Store, session.Options{
			Version:   d.Version,
			MinSubmit: s.MinSubmit(),
			MaxSubmit: s.MaxSubmit(),
		}),
		Limiter: &ratelimit.LogLimiter{
			Counter:        d.Counter,
			Max:            s.RateLimitCount,
			Window:         s.RateWindow(),
			ExcludeBlocked: s.RateLimitExcludeBlocked,
			Timeout:        timeout,
			Now:            time.Now,
		},
		Lists:     d.Lists,
		Events:    d.Events,
		SiteHost:  siteHost(d.SiteURL),
		Version:   d.Version,
		ScriptURL: d.ScriptURL,
		Timeout:   timeout,
		Now:       time.Now,
	}
}

// SetClock replaces the time source of g and the collaborators it owns.
func (g *Gatekeeper) SetClock(now func() time.Time) {
	g.Now = now
	g.Sessions.Now = now
	g.Limiter.Now = now
}

func (g *Gatekeeper) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// siteHost returns the lower-cased host of raw, or "" when it does not parse.
func siteHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// logger returns the request logger from ctx, or the global one.
func logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}

// fault records a collaborator failure that the pipeline tolerated.
func fault(ctx context.Context, component string, err error) {
	infraFaults.WithLabelValues(component).Inc()
	logger(ctx).Warn().Err(err).Str("component", component).Msg("collaborator failure tolerated")
}

// Validate runs the pipeline against sub and records the outcome in the
// event log according to the logging preferences.
func (g *Gatekeeper) Validate(ctx context.Context, sub *domain.Submission) Decision {
	tr := otel.Tracer("services/Gatekeeper")
	ctx, span := tr.Start(ctx, "Validate",
		trace.WithAttributes(
			attribute.String("form.type", string(sub.FormType)),
		),
	)
	defer span.End()

	d := g.run(ctx, sub)
	span.SetAttributes(
		attribute.Bool("decision.accepted", d.Accepted),
		attribute.String("decision.code", string(d.Code)),
	)
	decisionsTotal.WithLabelValues(string(sub.FormType), d.Outcome()).Inc()

	if !d.Accepted {
		blocksTotal.WithLabelValues(string(d.Category)).Inc()
		logger(ctx).Info().
			Str("form_type", string(sub.FormType)).
			Str("ip", sub.ClientIP).
			Str("category", string(d.Category)).
			Str("code", string(d.Code)).
			Str("reason", d.Reason).
			Msg("submission blocked")
		if g.Settings.LoggingEnabled {
			g.record(ctx, sub, d)
		}
		return d
	}

	// Whitelisted and disabled passes are not submissions the pipeline judged.
	if d.Code == CodeAccepted && g.Settings.LoggingEnabled && g.Settings.LogAccepted {
		g.record(ctx, sub, d)
	}
	return d
}

// record appends the decision to the event log. The write gets its own
// deadline (LOG_WRITE_TIMEOUT) detached from the request, so a client that
// disconnects early still leaves a log row. Failures are counted and logged.
func (g *Gatekeeper) record(ctx context.Context, sub *domain.Submission, d Decision) {
	if g.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.Timeout)
	defer cancel()
	if err := g.Events.Record(ctx, sub, d, g.Settings.EnhancedLogging); err != nil {
		fault(ctx, "event_log", err)
	}
}

// step is one pipeline stage; nil means the submission passed it.
type step func(context.Context, *domain.Submission, formFields) *Decision

// run evaluates sub against every enabled step in order and returns the
// first rejection, or an acceptance when all steps pass. With protection
// disabled every submission is accepted.
func (g *Gatekeeper) run(ctx context.Context, sub *domain.Submission) Decision {
	if !g.Settings.Enabled {
		return accept(CodeDisabled, "Protection disabled")
	}
	f := resolveFields(sub)

	if d, done := g.checkLists(ctx, sub, f); done {
		return d
	}

	steps := []step{
		g.checkRateLimit,
		g.checkMethod,
		g.checkToken,
		g.checkFieldMap,
		g.checkEmail,
		g.checkDuplicate,
		g.checkContent,
		g.checkClient,
		g.checkHoneypot,
		g.checkUserAgent,
		g.checkReferer,
		g.checkCookie,
	}
	for _, s := range steps {
		if d := s(ctx, sub, f); d != nil {
			return *d
		}
	}
	return accept(CodeAccepted, "Submission accepted")
}

// rejection is reject for steps, which return nil to pass.
func rejection(cat domain.BlockType, code Code, reason string) *Decision {
	d := reject(cat, code, reason)
	return &d
}

// checkLists decides outright for admins, whitelisted visitors and
// blacklisted addresses. done is false when the pipeline should continue.
func (g *Gatekeeper) checkLists(ctx context.Context, sub *domain.Submission, f formFields) (d Decision, done bool) {
	if sub.IsAdmin {
		return accept(CodeWhitelisted, "Administrator session"), true
	}
	if g.Lists == nil {
		return Decision{}, false
	}
	ok, err := g.Lists.Whitelisted(ctx, sub.ClientIP, f.email())
	switch {
	case err != nil:
		fault(ctx, "lists", err)
	case ok:
		return accept(CodeWhitelisted, "Whitelisted"), true
	}
	hit, err := g.Lists.BlacklistedIP(ctx, sub.ClientIP)
	switch {
	case err != nil:
		fault(ctx, "lists", err)
	case hit != "":
		return reject(domain.BlockBot, CodeIPBlacklisted, "IP validation failed: Address is blacklisted"), true
	}
	return Decision{}, false
}

// checkRateLimit rejects a client address that already reached the
// configured number of logged submissions in the window. A failing count
// lets the submission through.
func (g *Gatekeeper) checkRateLimit(ctx context.Context, sub *domain.Submission, _ formFields) *Decision {
	if !g.Settings.RateLimitEnabled {
		return nil
	}
	res := g.Limiter.Check(ctx, sub.ClientIP)
	if res.Err != nil {
		fault(ctx, "rate_limit", res.Err)
		return nil
	}
	if !res.Allowed {
		return rejection(domain.BlockRateLimit, CodeRateLimitExceeded,
			"Rate limit exceeded: Too many submissions. Please wait before trying again.")
	}
	return nil
}

// checkMethod rejects anything but POST. An unusual content type or an
// HTTP/1.0 request is only noted in the debug log.
func (g *Gatekeeper) checkMethod(ctx context.Context, sub *domain.Submission, _ formFields) *Decision {
	if !strings.EqualFold(sub.Method, "POST") {
		return rejection(domain.BlockBot, CodeMethodNotAllowed,
			"Request method validation failed: Only POST method allowed for form submissions")
	}
	lg := logger(ctx)
	if sub.ContentType != "" {
		mt, _, err := mime.ParseMediaType(sub.ContentType)
		if err != nil || !containsString(allowedContentTypes, mt) {
			lg.Debug().Str("content_type", sub.ContentType).Msg("unexpected content type")
		}
	}
	if sub.Proto == "HTTP/1.0" {
		lg.Debug().Msg("HTTP/1.0 form submission")
	}
	return nil
}

// checkToken consumes the one-time session token issued at render time.
//
// Every session outcome (missing, no session, mismatch, replay, expiry) maps
// to its own code in the bot category. Any other store error is logged as a
// fault and then treated as a missing session: a token that cannot be
// verified is never accepted.
func (g *Gatekeeper) checkToken(ctx context.Context, sub *domain.Submission, f formFields) *Decision {
	err := g.Sessions.ConsumeToken(ctx, sub.SessionID, f[session.FieldSessionToken])
	if err == nil {
		return nil
	}
	if !session.IsOutcome(err) {
		fault(ctx, "session_store", err)
		err = session.ErrNoSession
	}
	var code Code
	reason := "Token expired"
	switch {
	case errors.Is(err, session.ErrTokenMissing):
		code, reason = CodeTokenMissing, "Token missing"
	case errors.Is(err, session.ErrNoSession):
		code, reason = CodeNoSession, "No session token found"
	case errors.Is(err, session.ErrTokenMismatch):
		code, reason = CodeTokenMismatch, "Token mismatch"
	case errors.Is(err, session.ErrReplayDetected):
		code, reason = CodeReplayDetected, "Token already used (replay attack)"
	default:
		code = CodeTokenExpired
	}
	return rejection(domain.BlockBot, code, "Session validation failed: "+reason)
}

// checkFieldMap verifies the obfuscated field map against the one stored at
// render time. A form without a map passes.
func (g *Gatekeeper) checkFieldMap(ctx context.Context, sub *domain.Submission, f formFields) *Decision {
	checked, err := g.Sessions.VerifyFieldMap(ctx, sub.SessionID, f[session.FieldFieldMap])
	switch {
	case errors.Is(err, session.ErrFieldMapInvalid):
		return rejection(domain.BlockBot, CodeFieldMapInvalid, "Field validation failed: Invalid field mapping")
	case errors.Is(err, session.ErrFieldMapMismatch):
		return rejection(domain.BlockBot, CodeFieldMapMismatch, "Field validation failed: Field mapping verification failed")
	case err != nil:
		fault(ctx, "session_store", err)
	case !checked:
		logger(ctx).Debug().Msg("field map not verified")
	}
	return nil
}

// checkEmail runs the e-mail checks on the submitted address, in order:
// blacklisted address or domain, malformed syntax, disposable provider (when
// enabled), free provider (when enabled). Submissions without an address
// skip the step.
func (g *Gatekeeper) checkEmail(ctx context.Context, _ *domain.Submission, f formFields) *Decision {
	addr := f.email()
	if addr == "" {
		return nil
	}
	if g.Lists != nil {
		hit, err := g.Lists.BlacklistedEmail(ctx, addr)
		switch {
		case err != nil:
			fault(ctx, "lists", err)
		case hit != "":
			return rejection(domain.BlockSpam, CodeEmailBlacklisted, "Email validation failed: Email address is blacklisted")
		}
	}
	if r := email.ValidatePatterns(addr); !r.Valid {
		return rejection(domain.BlockSpam, CodeEmailInvalid, "Email validation failed: "+r.Reason)
	}
	if g.Settings.BlockDisposableEmails && email.IsDisposable(addr) {
		return rejection(domain.BlockSpam, CodeEmailDisposable, "Email validation failed: Disposable email addresses are not allowed")
	}
	if g.Settings.BlockFreeEmails && email.IsFree(addr) {
		return rejection(domain.BlockSpam, CodeEmailFree, "Email validation failed: Free email addresses are not allowed")
	}
	return nil
}

// checkDuplicate rejects content the same session submitted recently.
func (g *Gatekeeper) checkDuplicate(ctx context.Context, sub *domain.Submission, f formFields) *Decision {
	err := g.Sessions.CheckDuplicate(ctx, sub.SessionID, f.joined(duplicateFieldNames...))
	switch {
	case errors.Is(err, session.ErrDuplicateContent):
		return rejection(domain.BlockSpam, CodeDuplicateContent,
			"Duplicate content detected: You have already submitted this content recently.")
	case err != nil:
		fault(ctx, "session_store", err)
	}
	return nil
}

// checkContent is the content step: the gibberish pre-pass on the identity
// fields, then the keyword blacklist, then the ContentAnalyzer over all
// free-text fields. Keyword findings are spam; the remaining analyzer
// findings are content.
func (g *Gatekeeper) checkContent(ctx context.Context, _ *domain.Submission, f formFields) *Decision {
	// Gibberish pre-pass over the identity fields. Names are also checked for
	// random character strings, messages and subjects for a single random
	// token.
	gibberish := []struct {
		label  string
		value  string
		detect func(string) bool
	}{
		{"Name", f.first(nameFieldNames...), looksGenerated(content.FieldName, content.IsRandomChars)},
		{"Message", f.first(messageFieldNames...), looksGenerated(content.FieldMessage, content.IsPureGibberish)},
		{"Subject", f.first(subjectFieldNames...), looksGenerated(content.FieldMessage, content.IsPureGibberish)},
	}
	for _, c := range gibberish {
		if c.value != "" && c.detect(c.value) {
			return rejection(domain.BlockSpam, CodeGibberish,
				"Submission rejected: "+c.label+" appears to be computer-generated.")
		}
	}

	text := f.content()
	if text == "" {
		return nil
	}
	if g.Lists != nil {
		kw, err := g.Lists.BlacklistedKeyword(ctx, text)
		switch {
		case err != nil:
			fault(ctx, "lists", err)
		case kw != "":
			return rejection(domain.BlockSpam, CodeKeywordBlacklisted,
				"Content validation failed: Blacklisted keyword detected: "+kw)
		}
	}

	r := content.Analyze(text, g.Settings.URLLimit, g.Settings.KeywordFilterEnabled, g.Settings.KeywordSensitivity())
	if r.Valid {
		return nil
	}
	cat := domain.BlockContent
	if r.Check.Spam() {
		cat = domain.BlockSpam
	}
	return rejection(cat, contentCode(r.Check), "Content validation failed: "+r.Reason)
}

// looksGenerated combines the field-kind gibberish heuristics with a second
// detector.
func looksGenerated(kind content.FieldKind, also func(string) bool) func(string) bool {
	return func(v string) bool { return content.IsGibberish(v, kind) || also(v) }
}

func contentCode(c content.Check) Code {
	switch c {
	case content.CheckEncoding:
		return CodeContentEncoding
	case content.CheckURLCount:
		return CodeContentTooManyURLs
	case content.CheckKeywords, content.CheckKeywordCombo:
		return CodeContentSpam
	case content.CheckSpecialChars:
		return CodeContentSpecial
	case content.CheckRepetition:
		return CodeContentRepetitive
	case content.CheckAllCaps:
		return CodeContentAllCaps
	}
	return CodeContentSuspicious
}

// checkClient validates the client script's token when the script ran and
// measures the fill-in time from the session otherwise.
func (g *Gatekeeper) checkClient(ctx context.Context, sub *domain.Submission, f formFields) *Decision {
	if g.Settings.JSEnabled && f[session.FieldJSEnabled] == "1" {
		token := strings.TrimSpace(f[session.FieldJSToken])
		ts := strings.TrimSpace(f[session.FieldJSTimestamp])
		fp := strings.TrimSpace(f[session.FieldJSFingerprint])
		if token != "" && ts != "" && fp != "" {
			return g.checkScriptToken(ctx, token, ts, fp, f[session.FieldJSChecks])
		}
		logger(ctx).Debug().Msg("client token missing, checking session timing")
	}
	return g.checkTiming(ctx, sub)
}

func jsReject(code Code, reason string) *Decision {
	return rejection(domain.BlockJavaScript, code, "JavaScript validation failed: "+reason)
}

// checkScriptToken validates the fields the client script adds: the load
// timestamp must be numeric and its age within the submit window, token and
// fingerprint must be alphanumeric, and the browser checks, when sent, must
// be complete.
func (g *Gatekeeper) checkScriptToken(ctx context.Context, token, ts, fp, checks string) *Decision {
	ms, err := strconv.ParseFloat(ts, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return jsReject(CodeJSTokenInvalid, "Invalid timestamp format")
	}
	age := time.Duration((float64(g.now().UnixMilli()) - ms) * float64(time.Millisecond))
	if age > g.Settings.MaxSubmit() {
		return jsReject(CodeJSTokenExpired, "Token expired (too old)")
	}
	if age < g.Settings.MinSubmit() {
		return jsReject(CodeJSTooFast, "Submission too fast")
	}
	if !alnumRe.MatchString(token) {
		return jsReject(CodeJSTokenInvalid, "Invalid token format")
	}
	if !alnumRe.MatchString(fp) {
		return jsReject(CodeJSTokenInvalid, "Invalid fingerprint format")
	}
	if strings.TrimSpace(checks) != "" {
		if d := g.checkBrowserChecks(ctx, checks); d != nil {
			return d
		}
	}
	logger(ctx).Debug().Dur("age", age).Msg("client token accepted")
	return nil
}

// parseBrowserChecks decodes the client's capability report, rendering every
// value in its string form.
func parseBrowserChecks(raw string) (map[string]string, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return nil, false
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			// absent
		default:
			out[k] = ""
		}
	}
	return out, true
}

// checkBrowserChecks requires every capability key and well-formed screen
// and timezone values.
func (g *Gatekeeper) checkBrowserChecks(ctx context.Context, raw string) *Decision {
	checks, ok := parseBrowserChecks(raw)
	if !ok {
		return jsReject(CodeJSChecksInvalid, "Invalid browser checks format")
	}
	for _, k := range requiredBrowserChecks {
		if _, ok := checks[k]; !ok {
			return jsReject(CodeJSChecksInvalid, "Missing browser check - "+k)
		}
	}
	if checks["cookies"] != "1" {
		logger(ctx).Debug().Msg("client reports cookies disabled")
	}
	if !screenRe.MatchString(checks["screen"]) {
		return jsReject(CodeJSChecksInvalid, "Invalid screen resolution format")
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(checks["timezone"]), 64); err != nil {
		return jsReject(CodeJSChecksInvalid, "Invalid timezone format")
	}
	return nil
}

// checkTiming is the fallback when the script did not run: the fill-in time
// comes from the session or the form-load cookie.
func (g *Gatekeeper) checkTiming(ctx context.Context, sub *domain.Submission) *Decision {
	_, checked, err := g.Sessions.CheckTiming(ctx, sub.SessionID, sub.Cookies)
	var te *session.TimingError
	switch {
	case errors.As(err, &te) && errors.Is(err, session.ErrTooFast):
		return rejection(domain.BlockJavaScript, CodeTimingTooFast,
			"Time validation failed: Submission too fast ("+strconv.FormatInt(te.Seconds, 10)+" seconds)")
	case errors.As(err, &te):
		return rejection(domain.BlockJavaScript, CodeTimingTooSlow,
			"Time validation failed: Submission took too long ("+strconv.FormatInt(te.Seconds, 10)+" seconds)")
	case err != nil:
		fault(ctx, "session_store", err)
	case !checked:
		logger(ctx).Debug().Msg("no timing data available")
	}
	return nil
}

// checkHoneypot rejects a submission in which any honeypot field has a
// value. Both today's and yesterday's daily names are checked.
func (g *Gatekeeper) checkHoneypot(ctx context.Context, _ *domain.Submission, f formFields) *Decision {
	if !g.Settings.HoneypotEnabled {
		return nil
	}
	now := g.now()
	seen := false
	// Forms rendered before midnight UTC carry yesterday's names.
	for _, t := range []time.Time{now, now.Add(-24 * time.Hour)} {
		for i, name := range session.HoneypotFields(session.DailyHash(g.Version, t)) {
			v, ok := f[name]
			seen = seen || ok
			if strings.TrimSpace(v) != "" {
				return rejection(domain.BlockHoneypot, CodeHoneypotFilled,
					"Honeypot validation failed: Field "+strconv.Itoa(i+1)+" filled")
			}
		}
	}
	if strings.TrimSpace(f[session.FieldHoneypotCheck]) != "" {
		return rejection(domain.BlockHoneypot, CodeHoneypotFilled, "Honeypot validation failed: Check field filled")
	}
	if !seen {
		logger(ctx).Debug().Msg("honeypot fields not submitted")
	}
	return nil
}

// checkUserAgent rejects empty, short, blacklisted and digit-heavy agents.
// Known search and monitoring crawlers pass.
func (g *Gatekeeper) checkUserAgent(_ context.Context, sub *domain.Submission, _ formFields) *Decision {
	if !g.Settings.UACheckEnabled {
		return nil
	}
	if r := useragent.Check(sub.UserAgent); r.Blocked {
		return rejection(domain.BlockBot, CodeUABlocked, "User-Agent validation failed: "+r.Reason)
	}
	return nil
}

// checkReferer rejects a referer that does not parse, that points at
// another host than SITE_URL (ignoring a leading "www.") or that uses a
// scheme other than http(s). A missing referer, or an unknown site host,
// only produces a debug line.
func (g *Gatekeeper) checkReferer(ctx context.Context, sub *domain.Submission, _ formFields) *Decision {
	if !g.Settings.RefererCheckEnabled {
		return nil
	}
	ref := strings.TrimSpace(sub.Referer)
	if ref == "" {
		logger(ctx).Debug().Msg("form submission without referer")
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || u.Hostname() == "" {
		return rejection(domain.BlockBot, CodeRefererInvalid, "Referer validation failed: Invalid referer format")
	}
	if g.SiteHost == "" {
		logger(ctx).Debug().Msg("site host unknown, referer not checked")
		return nil
	}
	if strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.") != strings.TrimPrefix(g.SiteHost, "www.") {
		return rejection(domain.BlockBot, CodeRefererMismatch, "Referer validation failed: Form submitted from external site")
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return rejection(domain.BlockBot, CodeRefererInvalid, "Referer validation failed: Invalid protocol")
	}
	return nil
}

// checkCookie validates the test cookie set by the client script.
//
// A missing cookie is suspicious only when the script itself reported
// cookies as enabled. A present cookie must carry a numeric timestamp that
// is not in the future; a stale one is only noted.
func (g *Gatekeeper) checkCookie(ctx context.Context, sub *domain.Submission, f formFields) *Decision {
	if !g.Settings.CookieCheckEnabled {
		return nil
	}
	lg := logger(ctx)
	raw := strings.TrimSpace(sub.Cookies[session.TestCookie])
	if raw == "" {
		if checks, ok := parseBrowserChecks(f[session.FieldJSChecks]); ok {
			if v, present := checks["cookies"]; present && v == "1" {
				return rejection(domain.BlockBot, CodeCookieInconsistent,
					"Cookie validation failed: JavaScript reports cookies enabled but test cookie missing")
			}
		}
		lg.Debug().Msg("test cookie not found")
		return nil
	}
	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return rejection(domain.BlockBot, CodeCookieInvalid, "Cookie validation failed: Invalid test cookie format")
	}
	age := time.Duration((float64(g.now().UnixMilli()) - ms) * float64(time.Millisecond))
	switch {
	case age < 0:
		return rejection(domain.BlockBot, CodeCookieInvalid, "Cookie validation failed: Test cookie has future timestamp")
	case age > testCookieMaxAge:
		lg.Debug().Dur("age", age).Msg("stale test cookie")
	}
	return nil
}

// containsString reports whether s is in list.
func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
