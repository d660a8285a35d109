package services

import "github.com/tbourn/go-form-gatekeeper/internal/domain"

// Code identifies a rejection outcome in machine-readable form.
type Code string

const (
	CodeAccepted    Code = "accepted"
	CodeWhitelisted Code = "whitelisted"
	CodeDisabled    Code = "disabled"

	CodeIPBlacklisted     Code = "ip_blacklisted"
	CodeRateLimitExceeded Code = "rate_limit_exceeded"
	CodeMethodNotAllowed  Code = "method_not_allowed"

	CodeTokenMissing   Code = "token_missing"
	CodeNoSession      Code = "no_session"
	CodeTokenMismatch  Code = "token_mismatch"
	CodeReplayDetected Code = "replay_detected"
	CodeTokenExpired   Code = "token_expired"

	CodeFieldMapInvalid  Code = "field_map_invalid"
	CodeFieldMapMismatch Code = "field_map_mismatch"

	CodeEmailInvalid     Code = "email_invalid"
	CodeEmailDisposable  Code = "email_disposable"
	CodeEmailFree        Code = "email_free"
	CodeEmailBlacklisted Code = "email_blacklisted"

	CodeDuplicateContent Code = "duplicate_content"

	CodeGibberish          Code = "gibberish"
	CodeKeywordBlacklisted Code = "keyword_blacklisted"
	CodeContentEncoding    Code = "content_encoding"
	CodeContentTooManyURLs Code = "content_too_many_urls"
	CodeContentSuspicious  Code = "content_suspicious"
	CodeContentSpam        Code = "content_spam"
	CodeContentRepetitive  Code = "content_repetitive"
	CodeContentAllCaps     Code = "content_all_caps"
	CodeContentSpecial     Code = "content_special_chars"

	CodeJSTokenInvalid     Code = "js_token_invalid"
	CodeJSTokenExpired     Code = "js_token_expired"
	CodeJSTooFast          Code = "js_too_fast"
	CodeJSChecksInvalid    Code = "js_checks_invalid"
	CodeTimingTooFast      Code = "timing_too_fast"
	CodeTimingTooSlow      Code = "timing_too_slow"
	CodeHoneypotFilled     Code = "honeypot_filled"
	CodeUABlocked          Code = "ua_blocked"
	CodeRefererInvalid     Code = "referer_invalid"
	CodeRefererMismatch    Code = "referer_mismatch"
	CodeCookieInvalid      Code = "cookie_invalid"
	CodeCookieInconsistent Code = "cookie_inconsistent"
)

// PublicBlockMessage is the only text an end user ever sees for a rejection.
const PublicBlockMessage = "Your submission was blocked. Please try again."

// Decision is the pipeline's verdict on one submission. Reason is for logs
// and the admin API only.
type Decision struct {
	Accepted bool             `json:"accepted"`
	Category domain.BlockType `json:"category,omitempty"`
	Code     Code             `json:"code"`
	Reason   string           `json:"reason,omitempty"`
}

func accept(code Code, reason string) Decision {
	return Decision{Accepted: true, Code: code, Reason: reason}
}

func reject(cat domain.BlockType, code Code, reason string) Decision {
	return Decision{Category: cat, Code: code, Reason: reason}
}

// Outcome is the metrics label for d.
func (d Decision) Outcome() string {
	if d.Accepted {
		return "accepted"
	}
	return "blocked"
}
