// Package services – CleanupService
//
// CleanupService removes event rows past the retention period and expired
// token and load-time state from the session store. It is run periodically
// by the jobs package and on demand from the cron endpoint.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/config"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/session"
)

// CleanupResult reports what one run removed.
type CleanupResult struct {
	LogsDeleted     int64 `json:"logs_deleted"`
	SessionsCleaned int   `json:"sessions_cleaned"`
}

// CleanupService prunes the event log and the session store.
type CleanupService struct {
	DB    *gorm.DB
	Store session.Store
	// Settings returns the preferences in force at the time of the run.
	Settings func() config.Settings
	Now      func() time.Time
}

func (s *CleanupService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run performs both clean-ups. A failure in one does not skip the other;
// the first error is returned with whatever was removed.
func (s *CleanupService) Run(ctx context.Context) (CleanupResult, error) {
	tr := otel.Tracer("services/CleanupService")
	ctx, span := tr.Start(ctx, "Run")
	defer span.End()

	settings := config.DefaultSettings()
	if s.Settings != nil {
		settings = s.Settings()
	}
	now := s.now()
	lg := logger(ctx)

	var res CleanupResult
	var firstErr error

	// Old log rows; non-positive retention keeps everything.
	if days := settings.LogRetentionDays; days > 0 && s.DB != nil {
		n, err := repo.DeleteEventsOlderThan(ctx, s.DB, now.AddDate(0, 0, -days))
		if err != nil {
			lg.Error().Err(err).Msg("clean old logs")
			firstErr = err
		}
		res.LogsDeleted = n
	}

	// Expired session state.
	if s.Store != nil {
		n, err := s.Store.Sweep(ctx, session.Prune(now, settings.MaxSubmit()))
		if err != nil {
			lg.Error().Err(err).Msg("clean expired sessions")
			if firstErr == nil {
				firstErr = err
			}
		}
		res.SessionsCleaned = n
	}

	recordCleanup(res.LogsDeleted, res.SessionsCleaned)
	lg.Info().
		Int64("logs_deleted", res.LogsDeleted).
		Int("sessions_cleaned", res.SessionsCleaned).
		Msg("cleanup finished")
	return res, firstErr
}
