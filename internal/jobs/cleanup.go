// Package jobs runs the gatekeeper's periodic background work.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-form-gatekeeper/internal/services"
)

const defaultInterval = time.Hour

// Cleaner performs one cleanup pass.
type Cleaner interface {
	Run(ctx context.Context) (services.CleanupResult, error)
}

// RunCleanup runs c once immediately and then every interval until ctx is
// done. Failed passes are logged and retried on the next tick. It returns
// ctx.Err() so it can be used directly in an errgroup.
func RunCleanup(ctx context.Context, c Cleaner, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce(ctx, c)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runOnce(ctx, c)
		}
	}
}

func runOnce(ctx context.Context, c Cleaner) {
	start := time.Now()
	res, err := c.Run(ctx)
	if err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("cleanup pass failed")
		return
	}
	log.Debug().
		Int64("logs_deleted", res.LogsDeleted).
		Int("sessions_cleaned", res.SessionsCleaned).
		Dur("took", time.Since(start)).
		Msg("cleanup pass done")
}
