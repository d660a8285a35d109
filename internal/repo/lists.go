// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for ListEntry, the
// administrator-curated whitelist and blacklist.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// CreateListEntry inserts e and returns ErrDuplicate when (kind, type, value)
// already exists.
func CreateListEntry(ctx context.Context, db *gorm.DB, e *domain.ListEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetListEntry fetches an entry by id, or ErrNotFound.
func GetListEntry(ctx context.Context, db *gorm.DB, id uint) (*domain.ListEntry, error) {
	var e domain.ListEntry
	if err := db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteListEntry removes an entry, returning ErrNotFound when absent.
func DeleteListEntry(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.ListEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleListEntry flips Active and returns the updated entry.
func ToggleListEntry(ctx context.Context, db *gorm.DB, id uint) (*domain.ListEntry, error) {
	var out *domain.ListEntry
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := GetListEntry(ctx, tx, id)
		if err != nil {
			return err
		}
		e.Active = !e.Active
		if err := tx.Model(e).Update("active", e.Active).Error; err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, err
}

// FindActive returns the active entry of kind/type with exactly value, or
// ErrNotFound.
func FindActive(ctx context.Context, db *gorm.DB, kind domain.ListKind, typ domain.ListType, value string) (*domain.ListEntry, error) {
	var e domain.ListEntry
	err := db.WithContext(ctx).
		Where("kind = ? AND type = ? AND value = ? AND active = ?", kind, typ, value, true).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ActiveValues returns the values of every active entry of kind/type.
func ActiveValues(ctx context.Context, db *gorm.DB, kind domain.ListKind, typ domain.ListType) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).Model(&domain.ListEntry{}).
		Where("kind = ? AND type = ? AND active = ?", kind, typ, true).
		Order("id ASC").
		Pluck("value", &out).Error
	return out, err
}

// ListEntries returns entries filtered by kind and type (empty means any),
// newest first.
func ListEntries(ctx context.Context, db *gorm.DB, kind domain.ListKind, typ domain.ListType) ([]domain.ListEntry, error) {
	var out []domain.ListEntry
	q := db.WithContext(ctx)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}
