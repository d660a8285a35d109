package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// Preference keys understood by the gatekeeper.
const (
	KeyEnabled                 = "enabled"
	KeyProtectionLevel         = "protection_level"
	KeyJSEnabled               = "js_enabled"
	KeyMinSubmitTime           = "min_submit_time"
	KeyMaxSubmitTime           = "max_submit_time"
	KeyTokenExpiration         = "token_expiration"
	KeyHoneypotEnabled         = "honeypot_enabled"
	KeyUACheckEnabled          = "ua_check_enabled"
	KeyRefererCheckEnabled     = "referer_check_enabled"
	KeyCookieCheckEnabled      = "cookie_check_enabled"
	KeyURLLimit                = "url_limit"
	KeyKeywordFilterEnabled    = "keyword_filter_enabled"
	KeyBlockDisposableEmails   = "block_disposable_emails"
	KeyBlockFreeEmails         = "block_free_emails"
	KeyRateLimitEnabled        = "rate_limit_enabled"
	KeyRateLimitCount          = "rate_limit_count"
	KeyRateLimitPeriod         = "rate_limit_period"
	KeyRateLimitExcludeBlocked = "rate_limit_exclude_blocked"
	KeyLoggingEnabled          = "logging_enabled"
	KeyLogAccepted             = "log_accepted"
	KeyEnhancedLogging         = "enhanced_logging"
	KeyLogRetentionDays        = "log_retention_days"
	KeyCronToken               = "cron_token"
)

var (
	// ErrUnknownPreference is returned for keys outside the known set.
	ErrUnknownPreference = errors.New("unknown preference")
	// ErrInvalidPreference is returned when a value does not parse as the key's type.
	ErrInvalidPreference = errors.New("invalid preference value")
)

// Settings is the typed view of the pipeline preferences. A Gatekeeper reads
// it once at construction; changing preferences means building a new one.
type Settings struct {
	Enabled         bool   `json:"enabled"`
	ProtectionLevel string `json:"protection_level"` // low|medium|high

	JSEnabled       bool `json:"js_enabled"`
	MinSubmitTime   int  `json:"min_submit_time"`  // seconds
	MaxSubmitTime   int  `json:"max_submit_time"`  // seconds
	TokenExpiration int  `json:"token_expiration"` // seconds

	HoneypotEnabled     bool `json:"honeypot_enabled"`
	UACheckEnabled      bool `json:"ua_check_enabled"`
	RefererCheckEnabled bool `json:"referer_check_enabled"`
	CookieCheckEnabled  bool `json:"cookie_check_enabled"`

	URLLimit              int  `json:"url_limit"`
	KeywordFilterEnabled  bool `json:"keyword_filter_enabled"`
	BlockDisposableEmails bool `json:"block_disposable_emails"`
	BlockFreeEmails       bool `json:"block_free_emails"`

	RateLimitEnabled        bool `json:"rate_limit_enabled"`
	RateLimitCount          int  `json:"rate_limit_count"`
	RateLimitPeriod         int  `json:"rate_limit_period"` // seconds
	RateLimitExcludeBlocked bool `json:"rate_limit_exclude_blocked"`

	LoggingEnabled   bool `json:"logging_enabled"`
	LogAccepted      bool `json:"log_accepted"`
	EnhancedLogging  bool `json:"enhanced_logging"`
	LogRetentionDays int  `json:"log_retention_days"`

	CronToken string `json:"-"`
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		ProtectionLevel: "medium",

		JSEnabled:       true,
		MinSubmitTime:   3,
		MaxSubmitTime:   3600,
		TokenExpiration: 3600,

		HoneypotEnabled:     true,
		UACheckEnabled:      true,
		RefererCheckEnabled: true,
		CookieCheckEnabled:  true,

		URLLimit:              3,
		KeywordFilterEnabled:  true,
		BlockDisposableEmails: true,
		BlockFreeEmails:       false,

		RateLimitEnabled:        true,
		RateLimitCount:          5,
		RateLimitPeriod:         3600,
		RateLimitExcludeBlocked: true,

		LoggingEnabled:   true,
		LogAccepted:      true,
		EnhancedLogging:  true,
		LogRetentionDays: 30,
	}
}

// MinSubmit is the shortest plausible human fill-in time.
func (s Settings) MinSubmit() time.Duration { return time.Duration(s.MinSubmitTime) * time.Second }

// MaxSubmit is the longest accepted gap between render and submit.
func (s Settings) MaxSubmit() time.Duration { return time.Duration(s.MaxSubmitTime) * time.Second }

// RateWindow is the trailing window counted by the rate limiter.
func (s Settings) RateWindow() time.Duration { return time.Duration(s.RateLimitPeriod) * time.Second }

// KeywordSensitivity maps the protection level to 1 (low), 2 (medium) or 3 (high).
func (s Settings) KeywordSensitivity() int {
	switch s.ProtectionLevel {
	case "low":
		return 1
	case "high":
		return 3
	}
	return 2
}

// Validate checks cross-field constraints.
func (s Settings) Validate() error {
	switch s.ProtectionLevel {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("%w: protection_level must be low, medium or high", ErrInvalidPreference)
	}
	if s.MinSubmitTime < 0 {
		return fmt.Errorf("%w: min_submit_time must be >= 0", ErrInvalidPreference)
	}
	if s.MaxSubmitTime <= s.MinSubmitTime {
		return fmt.Errorf("%w: max_submit_time must exceed min_submit_time", ErrInvalidPreference)
	}
	if s.TokenExpiration <= 0 {
		return fmt.Errorf("%w: token_expiration must be > 0", ErrInvalidPreference)
	}
	if s.URLLimit < 0 {
		return fmt.Errorf("%w: url_limit must be >= 0", ErrInvalidPreference)
	}
	if s.RateLimitCount < 1 || s.RateLimitPeriod < 1 {
		return fmt.Errorf("%w: rate limit count and period must be >= 1", ErrInvalidPreference)
	}
	if s.LogRetentionDays < 0 {
		return fmt.Errorf("%w: log_retention_days must be >= 0", ErrInvalidPreference)
	}
	return nil
}

type prefField struct {
	typ domain.PreferenceType
	b   func(*Settings) *bool
	i   func(*Settings) *int
	str func(*Settings) *string
}

var prefFields = map[string]prefField{
	KeyEnabled:                 {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.Enabled }},
	KeyProtectionLevel:         {typ: domain.PrefString, str: func(s *Settings) *string { return &s.ProtectionLevel }},
	KeyJSEnabled:               {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.JSEnabled }},
	KeyMinSubmitTime:           {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.MinSubmitTime }},
	KeyMaxSubmitTime:           {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.MaxSubmitTime }},
	KeyTokenExpiration:         {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.TokenExpiration }},
	KeyHoneypotEnabled:         {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.HoneypotEnabled }},
	KeyUACheckEnabled:          {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.UACheckEnabled }},
	KeyRefererCheckEnabled:     {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.RefererCheckEnabled }},
	KeyCookieCheckEnabled:      {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.CookieCheckEnabled }},
	KeyURLLimit:                {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.URLLimit }},
	KeyKeywordFilterEnabled:    {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.KeywordFilterEnabled }},
	KeyBlockDisposableEmails:   {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.BlockDisposableEmails }},
	KeyBlockFreeEmails:         {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.BlockFreeEmails }},
	KeyRateLimitEnabled:        {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.RateLimitEnabled }},
	KeyRateLimitCount:          {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.RateLimitCount }},
	KeyRateLimitPeriod:         {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.RateLimitPeriod }},
	KeyRateLimitExcludeBlocked: {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.RateLimitExcludeBlocked }},
	KeyLoggingEnabled:          {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.LoggingEnabled }},
	KeyLogAccepted:             {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.LogAccepted }},
	KeyEnhancedLogging:         {typ: domain.PrefBool, b: func(s *Settings) *bool { return &s.EnhancedLogging }},
	KeyLogRetentionDays:        {typ: domain.PrefInt, i: func(s *Settings) *int { return &s.LogRetentionDays }},
	KeyCronToken:               {typ: domain.PrefString, str: func(s *Settings) *string { return &s.CronToken }},
}

// PreferenceType returns the declared type of key.
func PreferenceType(key string) (domain.PreferenceType, bool) {
	f, ok := prefFields[key]
	return f.typ, ok
}

// Apply parses value according to key's type and stores it in s.
func (s *Settings) Apply(key, value string) error {
	f, ok := prefFields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreference, key)
	}
	value = strings.TrimSpace(value)
	switch f.typ {
	case domain.PrefBool:
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects a boolean", ErrInvalidPreference, key)
		}
		*f.b(s) = b
	case domain.PrefInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", ErrInvalidPreference, key)
		}
		*f.i(s) = n
	default:
		*f.str(s) = value
	}
	return nil
}

// SettingsFromPreferences overlays stored key/value pairs onto the defaults.
// Unknown keys and unparsable values keep the default.
func SettingsFromPreferences(prefs map[string]string) Settings {
	s := DefaultSettings()
	for k, v := range prefs {
		_ = s.Apply(k, v)
	}
	if s.Validate() != nil {
		d := DefaultSettings()
		d.CronToken = s.CronToken
		return d
	}
	return s
}

// Preferences flattens s into storable rows, sorted by key.
func (s Settings) Preferences() []domain.Preference {
	out := make([]domain.Preference, 0, len(prefFields))
	for k, f := range prefFields {
		p := domain.Preference{Key: k, Type: f.typ}
		switch f.typ {
		case domain.PrefBool:
			p.Value = boolString(*f.b(&s))
		case domain.PrefInt:
			p.Value = strconv.Itoa(*f.i(&s))
		default:
			p.Value = *f.str(&s)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// seedFile is the on-disk layout of SETTINGS_FILE.
type seedFile struct {
	Preferences map[string]any `yaml:"preferences"`
}

// LoadSeedFile reads a YAML preferences seed:
//
//	preferences:
//	  url_limit: 5
//	  block_free_emails: true
//	  protection_level: high
//
// Values are returned in their stored string form. Keys are validated against
// the known set.
func LoadSeedFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	out := make(map[string]string, len(f.Preferences))
	scratch := DefaultSettings()
	for k, v := range f.Preferences {
		sv, err := PreferenceString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, k)
		}
		if err := scratch.Apply(k, sv); err != nil {
			return nil, err
		}
		out[k] = sv
	}
	return out, nil
}

// PreferenceString renders a decoded YAML or JSON scalar in its stored form:
// booleans as "1"/"0", numbers in decimal, strings unchanged.
func PreferenceString(v any) (string, error) {
	switch t := v.(type) {
	case bool:
		return boolString(t), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case string:
		return t, nil
	}
	return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidPreference, v)
}
