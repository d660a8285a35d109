// Package services – PreferenceService
//
// PreferenceService reads and writes the pipeline preferences. Writes are
// validated as a whole Settings value before anything is persisted, and a
// successful write publishes a freshly built Gatekeeper.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/config"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
)

// PreferenceService manages the preferences table.
type PreferenceService struct {
	DB *gorm.DB
	// Holder and Build are optional; when both are set Update swaps in a
	// Gatekeeper built from the new settings.
	Holder *GatekeeperHolder
	Build  func(config.Settings) *Gatekeeper

	mu sync.Mutex
}

// NewPreferenceService returns a PreferenceService over db.
func NewPreferenceService(db *gorm.DB, h *GatekeeperHolder, build func(config.Settings) *Gatekeeper) *PreferenceService {
	return &PreferenceService{DB: db, Holder: h, Build: build}
}

// Load returns the stored preferences over the defaults.
func (s *PreferenceService) Load(ctx context.Context) (config.Settings, error) {
	prefs, err := repo.AllPreferences(ctx, s.DB)
	if err != nil {
		return config.Settings{}, err
	}
	return config.SettingsFromPreferences(prefs), nil
}

// Seed stores every preference that is not stored yet, taking values from
// overrides and then from the defaults. Stored values are left alone.
func (s *PreferenceService) Seed(ctx context.Context, overrides map[string]string) error {
	rows := config.DefaultSettings().Preferences()
	kept := rows[:0]
	for _, p := range rows {
		if v, ok := overrides[p.Key]; ok {
			p.Value = v
		}
		// An empty cron token is generated by EnsureCronToken instead.
		if p.Key == config.KeyCronToken && p.Value == "" {
			continue
		}
		kept = append(kept, p)
	}
	return repo.SeedPreferences(ctx, s.DB, kept)
}

// EnsureCronToken returns the stored cron token, generating and storing a
// random one first when none exists.
func (s *PreferenceService) EnsureCronToken(ctx context.Context) (string, error) {
	v, ok, err := repo.GetPreference(ctx, s.DB, config.KeyCronToken)
	if err != nil {
		return "", err
	}
	if ok && v != "" {
		return v, nil
	}
	return s.RotateCronToken(ctx)
}

// RotateCronToken stores and returns a new random cron token; the previous
// one stops working immediately.
func (s *PreferenceService) RotateCronToken(ctx context.Context) (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate cron token: %w", err)
	}
	token := hex.EncodeToString(b[:])
	typ, _ := config.PreferenceType(config.KeyCronToken)
	if err := repo.SetPreference(ctx, s.DB, config.KeyCronToken, token, typ); err != nil {
		return "", err
	}
	return token, nil
}

// Update applies a partial change set. Unknown keys, unparsable values and
// settings that fail validation are rejected with ErrInvalidPreferences and
// nothing is written. The cron token cannot be changed here.
func (s *PreferenceService) Update(ctx context.Context, changes map[string]string) (config.Settings, error) {
	tr := otel.Tracer("services/PreferenceService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int("changes", len(changes))),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Load(ctx)
	if err != nil {
		return config.Settings{}, err
	}
	next := cur
	keys := make([]string, 0, len(changes))
	for k, v := range changes {
		if k == config.KeyCronToken {
			return cur, fmt.Errorf("%w: %s is read-only", ErrInvalidPreferences, k)
		}
		if err := next.Apply(k, v); err != nil {
			return cur, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
		}
		keys = append(keys, k)
	}
	if err := next.Validate(); err != nil {
		return cur, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	sort.Strings(keys)

	stored := make(map[string]string, len(keys))
	for _, p := range next.Preferences() {
		stored[p.Key] = p.Value
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			typ, _ := config.PreferenceType(k)
			if err := repo.SetPreference(ctx, tx, k, stored[k], typ); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return cur, err
	}

	if s.Holder != nil && s.Build != nil {
		s.Holder.Store(s.Build(next))
	}
	logger(ctx).Info().Strs("keys", keys).Msg("preferences updated")
	return next, nil
}
