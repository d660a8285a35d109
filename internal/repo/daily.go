package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

// DateLayout is the DailyStat.Date format.
const DateLayout = "2006-01-02"

// StatDate formats t as a UTC calendar date.
func StatDate(t time.Time) string { return t.UTC().Format(DateLayout) }

// UpsertDailyStat counts one block of category t on date. The row is created
// on first use and incremented in place afterwards, so concurrent writers do
// not lose updates.
func UpsertDailyStat(ctx context.Context, db *gorm.DB, date string, t domain.BlockType) error {
	row := domain.DailyStat{Date: date, TotalBlocks: 1}
	set := map[string]any{"total_blocks": gorm.Expr("daily_stats.total_blocks + 1")}
	if col := domain.StatColumn(t); col != "" {
		setCounter(&row, t)
		set[col] = gorm.Expr("daily_stats." + col + " + 1")
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(set),
	}).Create(&row).Error
}

func setCounter(row *domain.DailyStat, t domain.BlockType) {
	switch t {
	case domain.BlockBot:
		row.BotBlocks = 1
	case domain.BlockSpam:
		row.SpamBlocks = 1
	case domain.BlockHoneypot:
		row.HoneypotBlocks = 1
	case domain.BlockJavaScript:
		row.JSBlocks = 1
	case domain.BlockRateLimit:
		row.RateLimitBlocks = 1
	case domain.BlockContent:
		row.ContentBlocks = 1
	}
}

// ListDailyStats returns the rows dated on or after since, newest first.
func ListDailyStats(ctx context.Context, db *gorm.DB, since string) ([]domain.DailyStat, error) {
	var out []domain.DailyStat
	err := db.WithContext(ctx).Where("date >= ?", since).Order("date DESC").Find(&out).Error
	return out, err
}

// SumBlocksSince totals DailyStat.TotalBlocks for dates on or after since.
// An empty since sums every row.
func SumBlocksSince(ctx context.Context, db *gorm.DB, since string) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.DailyStat{}).Select("COALESCE(SUM(total_blocks), 0)")
	if since != "" {
		q = q.Where("date >= ?", since)
	}
	err := q.Scan(&total).Error
	return total, err
}

// DeleteAllDailyStats wipes the aggregate counters.
func DeleteAllDailyStats(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.DailyStat{})
	return res.RowsAffected, res.Error
}
