// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the BlockEvent
// log: appends, the rate-limit count query, retention deletes, and paging.
package repo

import (
	"context"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// MaxUserAgentLen bounds the stored user agent.
const MaxUserAgentLen = 500

// EventFilter narrows event listings. Zero fields do not filter.
type EventFilter struct {
	Type     domain.BlockType
	FormType domain.FormType
	Blocked  *bool
}

func (f EventFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.FormType != "" {
		q = q.Where("form_type = ?", f.FormType)
	}
	if f.Blocked != nil {
		q = q.Where("blocked = ?", *f.Blocked)
	}
	return q
}

// InsertEvent appends ev to the log. CreatedAt defaults to now (UTC) and the
// user agent is truncated to at most MaxUserAgentLen bytes on a rune
// boundary.
func InsertEvent(ctx context.Context, db *gorm.DB, ev *domain.BlockEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if len(ev.UserAgent) > MaxUserAgentLen {
		cut := MaxUserAgentLen
		for cut > 0 && !utf8.RuneStart(ev.UserAgent[cut]) {
			cut--
		}
		ev.UserAgent = ev.UserAgent[:cut]
	}
	if ev.Type == "" {
		ev.Type = domain.BlockOther
	}
	return db.WithContext(ctx).Create(ev).Error
}

// CountSince counts events from ip created at or after since. With
// excludeBlocked only accepted (blocked=false) rows are counted.
func CountSince(ctx context.Context, db *gorm.DB, ip string, since time.Time, excludeBlocked bool) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.BlockEvent{}).
		Where("ip = ? AND created_at >= ?", ip, since.UTC())
	if excludeBlocked {
		q = q.Where("blocked = ?", false)
	}
	err := q.Count(&n).Error
	return n, err
}

// DeleteEventsOlderThan removes events created before cutoff.
func DeleteEventsOlderThan(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("created_at < ?", cutoff.UTC()).Delete(&domain.BlockEvent{})
	return res.RowsAffected, res.Error
}

// DeleteAllEvents empties the log.
func DeleteAllEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.BlockEvent{})
	return res.RowsAffected, res.Error
}

// CountEvents returns the number of events matching f.
func CountEvents(ctx context.Context, db *gorm.DB, f EventFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&domain.BlockEvent{})).Count(&n).Error
	return n, err
}

// ListEventsPage returns events matching f, newest first (CreatedAt DESC, ID DESC).
func ListEventsPage(ctx context.Context, db *gorm.DB, f EventFilter, offset, limit int) ([]domain.BlockEvent, error) {
	var out []domain.BlockEvent
	err := f.apply(db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// EachEventBatch walks every event matching f in ID order, batchSize rows at
// a time.
func EachEventBatch(ctx context.Context, db *gorm.DB, f EventFilter, batchSize int, fn func([]domain.BlockEvent) error) error {
	var batch []domain.BlockEvent
	res := f.apply(db.WithContext(ctx)).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}

// TypeCount is one row of a per-category breakdown.
type TypeCount struct {
	Type  domain.BlockType `json:"type"`
	Count int64            `json:"count"`
}

// TopBlockTypes returns blocked-event counts per category since t, largest first.
func TopBlockTypes(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]TypeCount, error) {
	var out []TypeCount
	q := db.WithContext(ctx).Model(&domain.BlockEvent{}).
		Select("type, COUNT(*) AS count").
		Where("blocked = ? AND created_at >= ?", true, since.UTC()).
		Group("type").
		Order("count DESC, type ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&out).Error
	return out, err
}

// CountBlockedSince counts blocked events created at or after since.
func CountBlockedSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.BlockEvent{}).Where("blocked = ?", true)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	err := q.Count(&n).Error
	return n, err
}
