// Package services – ReportService
//
// ReportService backs the admin log and statistics views: block summaries,
// daily counters, paged event listings, CSV export and manual purges. Day
// boundaries are UTC midnights.
package services

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/utils"
)

const (
	topBlockTypes = 5
	maxDailyDays  = 366
	defaultDaily  = 30
	summaryMonth  = 30
	summaryWeek   = 7
)

// Summary is the blocked-submission overview.
type Summary struct {
	Today    int64            `json:"today"`
	Week     int64            `json:"week"`
	Month    int64            `json:"month"`
	Total    int64            `json:"total"`
	TopTypes []repo.TypeCount `json:"top_types"`
}

// ReportService reads and prunes the event log.
type ReportService struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewReportService returns a ReportService using the wall clock.
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Now: time.Now}
}

func (s *ReportService) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary counts blocks for today, the last 7 and 30 days and all time, and
// the most frequent categories of the last 30 days.
func (s *ReportService) Summary(ctx context.Context) (Summary, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Summary")
	defer span.End()

	today := s.today()
	var out Summary
	counts := []struct {
		dst   *int64
		since time.Time
	}{
		{&out.Today, today},
		{&out.Week, today.AddDate(0, 0, -summaryWeek)},
		{&out.Month, today.AddDate(0, 0, -summaryMonth)},
		{&out.Total, time.Time{}},
	}
	for _, c := range counts {
		n, err := repo.CountBlockedSince(ctx, s.DB, c.since)
		if err != nil {
			return Summary{}, err
		}
		*c.dst = n
	}
	top, err := repo.TopBlockTypes(ctx, s.DB, today.AddDate(0, 0, -summaryMonth), topBlockTypes)
	if err != nil {
		return Summary{}, err
	}
	if top == nil {
		top = []repo.TypeCount{}
	}
	out.TopTypes = top
	return out, nil
}

// Daily returns the per-day counters of the last days days (today
// included), newest first. days outside 1..366 falls back to 30.
func (s *ReportService) Daily(ctx context.Context, days int) ([]domain.DailyStat, error) {
	if days < 1 || days > maxDailyDays {
		days = defaultDaily
	}
	since := repo.StatDate(s.today().AddDate(0, 0, -(days - 1)))
	out, err := repo.ListDailyStats(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.DailyStat{}
	}
	return out, nil
}

// Events returns one page of events matching f, newest first, and the total.
func (s *ReportService) Events(ctx context.Context, f repo.EventFilter, page, pageSize int) ([]domain.BlockEvent, int64, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Events",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	pg := utils.NewPage(page, pageSize, 20, 0)
	total, err := repo.CountEvents(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.BlockEvent{}, 0, nil
	}
	items, err := repo.ListEventsPage(ctx, s.DB, f, pg.Offset(), pg.Size)
	return items, total, err
}

// EventsStats returns the count and newest timestamp of events matching f,
// for conditional responses.
func (s *ReportService) EventsStats(ctx context.Context, f repo.EventFilter) (int64, *time.Time, error) {
	return repo.EventsStats(ctx, s.DB, f)
}

// Export writes every event matching f to w as CSV.
func (s *ReportService) Export(ctx context.Context, f repo.EventFilter, w io.Writer) error {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Export")
	defer span.End()

	return repo.ExportEventsCSV(ctx, s.DB, f, w)
}

// Purge deletes events older than olderThanDays days; 0 deletes every
// event. With resetStats the daily counters are wiped as well.
func (s *ReportService) Purge(ctx context.Context, olderThanDays int, resetStats bool) (int64, error) {
	tr := otel.Tracer("services/ReportService")
	ctx, span := tr.Start(ctx, "Purge",
		trace.WithAttributes(
			attribute.Int("older_than_days", olderThanDays),
			attribute.Bool("reset_stats", resetStats),
		),
	)
	defer span.End()

	var deleted int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if olderThanDays <= 0 {
			deleted, err = repo.DeleteAllEvents(ctx, tx)
		} else {
			deleted, err = repo.DeleteEventsOlderThan(ctx, tx, s.today().AddDate(0, 0, -olderThanDays))
		}
		if err != nil || !resetStats {
			return err
		}
		_, err = repo.DeleteAllDailyStats(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}
	logger(ctx).Info().Int64("deleted", deleted).Int("older_than_days", olderThanDays).Msg("event log purged")
	return deleted, nil
}
