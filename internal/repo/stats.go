// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// EventsStats returns the number of events matching f and the newest
// CreatedAt among them (nil when there are none).
func EventsStats(ctx context.Context, db *gorm.DB, f EventFilter) (count int64, maxCreatedAt *time.Time, err error) {
	q := f.apply(db.WithContext(ctx).Model(&domain.BlockEvent{}))

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	q = f.apply(db.WithContext(ctx).Model(&domain.BlockEvent{}))
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
