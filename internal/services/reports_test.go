package services

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
)

var reportNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

// logBlock writes a blocked event at t and counts it in the daily stats.
func logBlock(t *testing.T, db *gorm.DB, at time.Time, typ domain.BlockType) {
	t.Helper()
	ctx := context.Background()
	ev := &domain.BlockEvent{CreatedAt: at, IP: "198.51.100.1", Type: typ, Reason: "r", FormType: domain.FormContact, Blocked: true}
	if err := repo.InsertEvent(ctx, db, ev); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	if err := repo.UpsertDailyStat(ctx, db, repo.StatDate(at), typ); err != nil {
		t.Fatalf("upsert stat: %v", err)
	}
}

func newReportFixture(t *testing.T) (*ReportService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	s := NewReportService(db)
	s.Now = fixedClock(reportNow)

	logBlock(t, db, reportNow.Add(-time.Hour), domain.BlockSpam)
	logBlock(t, db, reportNow.Add(-2*time.Hour), domain.BlockSpam)
	logBlock(t, db, reportNow.AddDate(0, 0, -3), domain.BlockBot)
	logBlock(t, db, reportNow.AddDate(0, 0, -20), domain.BlockHoneypot)
	logBlock(t, db, reportNow.AddDate(0, 0, -90), domain.BlockBot)
	accepted := &domain.BlockEvent{CreatedAt: reportNow.Add(-time.Minute), IP: "198.51.100.2", Reason: "ok", FormType: domain.FormItem}
	if err := repo.InsertEvent(context.Background(), db, accepted); err != nil {
		t.Fatalf("insert accepted: %v", err)
	}
	return s, db
}

func TestReportService_Summary(t *testing.T) {
	s, _ := newReportFixture(t)

	sum, err := s.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Today != 2 || sum.Week != 3 || sum.Month != 4 || sum.Total != 5 {
		t.Fatalf("summary = %+v", sum)
	}
	want := []repo.TypeCount{{Type: domain.BlockSpam, Count: 2}, {Type: domain.BlockBot, Count: 1}, {Type: domain.BlockHoneypot, Count: 1}}
	if len(sum.TopTypes) != len(want) {
		t.Fatalf("top types = %+v", sum.TopTypes)
	}
	for i := range want {
		if sum.TopTypes[i] != want[i] {
			t.Fatalf("top types = %+v, want %+v", sum.TopTypes, want)
		}
	}
}

func TestReportService_SummaryEmpty(t *testing.T) {
	s := NewReportService(newTestDB(t))
	sum, err := s.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 0 || sum.TopTypes == nil {
		t.Fatalf("summary = %+v, want zero counts and an empty list", sum)
	}
}

func TestReportService_Daily(t *testing.T) {
	s, _ := newReportFixture(t)
	ctx := context.Background()

	week, err := s.Daily(ctx, 7)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(week) != 2 || week[0].Date != "2026-03-14" || week[0].SpamBlocks != 2 || week[1].Date != "2026-03-11" {
		t.Fatalf("daily(7) = %+v", week)
	}

	// out of range falls back to 30 days
	month, err := s.Daily(ctx, 0)
	if err != nil || len(month) != 3 {
		t.Fatalf("daily(0) = %+v, %v", month, err)
	}
}

func TestReportService_EventsPaging(t *testing.T) {
	s, _ := newReportFixture(t)
	ctx := context.Background()
	blocked := true

	items, total, err := s.Events(ctx, repo.EventFilter{Blocked: &blocked}, 2, 2)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("page = %d items of %d", len(items), total)
	}
	if !items[0].CreatedAt.Equal(reportNow.AddDate(0, 0, -3)) {
		t.Fatalf("first item of page 2 created %v", items[0].CreatedAt)
	}

	items, total, err = s.Events(ctx, repo.EventFilter{Type: domain.BlockRateLimit}, 1, 20)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty filter = %v, %d, %v", items, total, err)
	}
}

func TestReportService_Export(t *testing.T) {
	s, _ := newReportFixture(t)
	var buf bytes.Buffer
	if err := s.Export(context.Background(), repo.EventFilter{Type: domain.BlockBot}, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header and 2 rows:\n%s", len(lines), buf.String())
	}
}

func TestReportService_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("older than keeps stats", func(t *testing.T) {
		s, db := newReportFixture(t)
		n, err := s.Purge(ctx, 30, false)
		if err != nil || n != 1 {
			t.Fatalf("Purge = %d, %v; want 1", n, err)
		}
		left, _ := repo.CountEvents(ctx, db, repo.EventFilter{})
		if left != 5 {
			t.Fatalf("events left = %d, want 5", left)
		}
		total, _ := repo.SumBlocksSince(ctx, db, "")
		if total != 5 {
			t.Fatalf("stats total = %d, want untouched 5", total)
		}
	})

	t.Run("everything with stats", func(t *testing.T) {
		s, db := newReportFixture(t)
		n, err := s.Purge(ctx, 0, true)
		if err != nil || n != 6 {
			t.Fatalf("Purge = %d, %v; want 6", n, err)
		}
		total, _ := repo.SumBlocksSince(ctx, db, "")
		if total != 0 {
			t.Fatalf("stats total = %d, want 0", total)
		}
	})
}
