package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// GetPreference returns the stored value for key and whether it exists.
func GetPreference(ctx context.Context, db *gorm.DB, key string) (string, bool, error) {
	var p domain.Preference
	err := db.WithContext(ctx).Where("key = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Value, true, nil
}

// SetPreference creates or overwrites key.
func SetPreference(ctx context.Context, db *gorm.DB, key, value string, typ domain.PreferenceType) error {
	p := domain.Preference{Key: key, Value: value, Type: typ, UpdatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(&p).Error
}

// SeedPreferences inserts rows whose keys are not stored yet and leaves
// existing values alone.
func SeedPreferences(ctx context.Context, db *gorm.DB, prefs []domain.Preference) error {
	if len(prefs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range prefs {
		prefs[i].UpdatedAt = now
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&prefs).Error
}

// AllPreferences returns every stored preference as key → value.
func AllPreferences(ctx context.Context, db *gorm.DB) (map[string]string, error) {
	var rows []domain.Preference
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, p := range rows {
		out[p.Key] = p.Value
	}
	return out, nil
}
