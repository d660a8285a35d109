package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if s.BlockFreeEmails || !s.BlockDisposableEmails || s.URLLimit != 3 || s.RateLimitCount != 5 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.MinSubmit() != 3*time.Second || s.MaxSubmit() != time.Hour || s.RateWindow() != time.Hour {
		t.Fatalf("duration helpers mismatch")
	}
	if s.KeywordSensitivity() != 2 {
		t.Fatalf("medium protection must map to sensitivity 2")
	}
}

func TestSettings_Apply(t *testing.T) {
	s := DefaultSettings()
	if err := s.Apply(KeyBlockFreeEmails, "1"); err != nil || !s.BlockFreeEmails {
		t.Fatalf("apply bool: %v %+v", err, s)
	}
	if err := s.Apply(KeyURLLimit, " 7 "); err != nil || s.URLLimit != 7 {
		t.Fatalf("apply int: %v %+v", err, s)
	}
	if err := s.Apply(KeyProtectionLevel, "high"); err != nil || s.KeywordSensitivity() != 3 {
		t.Fatalf("apply string: %v %+v", err, s)
	}
	if err := s.Apply(KeyURLLimit, "many"); !errors.Is(err, ErrInvalidPreference) {
		t.Fatalf("expected ErrInvalidPreference, got %v", err)
	}
	if err := s.Apply("nope", "1"); !errors.Is(err, ErrUnknownPreference) {
		t.Fatalf("expected ErrUnknownPreference, got %v", err)
	}
}

func TestSettingsFromPreferences(t *testing.T) {
	s := SettingsFromPreferences(map[string]string{
		KeyRateLimitCount: "9",
		KeyJSEnabled:      "0",
		KeyCronToken:      "abc",
		"legacy_key":      "ignored",
		KeyURLLimit:       "lots", // unparsable keeps the default
	})
	if s.RateLimitCount != 9 || s.JSEnabled || s.CronToken != "abc" || s.URLLimit != 3 {
		t.Fatalf("unexpected settings: %+v", s)
	}

	// Inconsistent stored values fall back to defaults but keep the cron token.
	bad := SettingsFromPreferences(map[string]string{
		KeyMinSubmitTime: "100",
		KeyMaxSubmitTime: "10",
		KeyCronToken:     "tok",
	})
	if bad.MinSubmitTime != 3 || bad.MaxSubmitTime != 3600 || bad.CronToken != "tok" {
		t.Fatalf("expected defaults on invalid combination: %+v", bad)
	}
}

func TestSettings_PreferencesRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.ProtectionLevel = "low"
	s.LogRetentionDays = 0
	rows := s.Preferences()
	m := make(map[string]string, len(rows))
	for i, p := range rows {
		if i > 0 && rows[i-1].Key >= p.Key {
			t.Fatalf("preferences not sorted by key")
		}
		typ, ok := PreferenceType(p.Key)
		if !ok || typ != p.Type {
			t.Fatalf("type mismatch for %s", p.Key)
		}
		m[p.Key] = p.Value
	}
	if m[KeyEnabled] != "1" || m[KeyBlockFreeEmails] != "0" {
		t.Fatalf("booleans must be stored as 1/0: %v", m)
	}
	if got := SettingsFromPreferences(m); got != s {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, s)
	}
}

func TestSettings_Validate(t *testing.T) {
	cases := map[string]func(*Settings){
		"protection":   func(s *Settings) { s.ProtectionLevel = "paranoid" },
		"timing":       func(s *Settings) { s.MaxSubmitTime = s.MinSubmitTime },
		"rate count":   func(s *Settings) { s.RateLimitCount = 0 },
		"retention":    func(s *Settings) { s.LogRetentionDays = -1 },
		"url limit":    func(s *Settings) { s.URLLimit = -1 },
		"token expiry": func(s *Settings) { s.TokenExpiration = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := DefaultSettings()
			mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidPreference) {
				t.Fatalf("expected ErrInvalidPreference, got %v", err)
			}
		})
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	body := "preferences:\n  url_limit: 5\n  block_free_emails: true\n  protection_level: high\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if got[KeyURLLimit] != "5" || got[KeyBlockFreeEmails] != "1" || got[KeyProtectionLevel] != "high" {
		t.Fatalf("unexpected seed: %v", got)
	}
	if _, ok := PreferenceType(KeyURLLimit); !ok {
		t.Fatalf("url_limit must be a known key")
	}
	if typ, _ := PreferenceType(KeyBlockFreeEmails); typ != domain.PrefBool {
		t.Fatalf("block_free_emails must be boolean")
	}
}

func TestLoadSeedFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadSeedFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(path, []byte("preferences:\n  no_such_key: 1\n"), 0o600)
	if _, err := LoadSeedFile(path); !errors.Is(err, ErrUnknownPreference) {
		t.Fatalf("expected ErrUnknownPreference, got %v", err)
	}
	_ = os.WriteFile(path, []byte("preferences:\n  url_limit: [1, 2]\n"), 0o600)
	if _, err := LoadSeedFile(path); !errors.Is(err, ErrInvalidPreference) {
		t.Fatalf("expected ErrInvalidPreference, got %v", err)
	}
}
