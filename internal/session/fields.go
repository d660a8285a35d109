package session

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Wire names of the security fields embedded in rendered forms.
const (
	FieldSessionToken  = "oscbb_session_token"
	FieldFieldMap      = "oscbb_field_map"
	FieldHoneypotCheck = "oscbb_hp_check"
	FieldJSToken       = "oscbb_token"
	FieldJSTimestamp   = "oscbb_timestamp"
	FieldJSFingerprint = "oscbb_fingerprint"
	FieldJSChecks      = "oscbb_checks"
	FieldJSEnabled     = "oscbb_js_enabled"

	// TestCookie is set by the client script to the current time in ms.
	TestCookie = "oscbb_test"

	loadCookiePrefix = "oscbb_load_"
)

// SecurityFields lists every field name the gatekeeper itself injects.
var SecurityFields = []string{
	FieldSessionToken, FieldFieldMap, FieldHoneypotCheck, FieldJSToken,
	FieldJSTimestamp, FieldJSFingerprint, FieldJSChecks, FieldJSEnabled,
}

// roles are the real field names behind the obfuscated ones, in suffix order.
var roles = []string{"email", "name", "phone", "message", "subject"}

// DailyHash is the eight hex characters that seed obfuscated field names and
// honeypot names for the UTC day of t. It rotates at midnight UTC and with
// every version change.
func DailyHash(version string, t time.Time) string {
	sum := sha256.Sum256([]byte(version + t.UTC().Format("20060102")))
	return hex.EncodeToString(sum[:])[:8]
}

// FieldMap returns the obfuscated-name to real-name mapping for hash.
func FieldMap(hash string) map[string]string {
	m := make(map[string]string, len(roles))
	for i, role := range roles {
		m[fmt.Sprintf("field_%s_%d", hash, i+1)] = role
	}
	return m
}

// HoneypotFields returns the three hidden trap field names for hash.
func HoneypotFields(hash string) []string {
	return []string{"user_" + hash, "website_" + hash, "comment_" + hash}
}

// EncodeFieldMap renders m as base64(JSON) for the hidden form field.
func EncodeFieldMap(m map[string]string) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeFieldMap parses a value produced by EncodeFieldMap. Anything that is
// not base64 of a JSON object of strings yields ErrFieldMapInvalid.
func DecodeFieldMap(s string) (map[string]string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrFieldMapInvalid
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, ErrFieldMapInvalid
	}
	return m, nil
}

// LoadCookieName is the name of the cookie carrying the form-load time for
// sid, used when server-side session state is gone.
func LoadCookieName(sid string) string {
	sum := sha256.Sum256([]byte(sid))
	return loadCookiePrefix + hex.EncodeToString(sum[:])[:8]
}

func sameMap(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
