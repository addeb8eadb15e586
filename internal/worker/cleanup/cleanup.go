// Package cleanup removes expired sessions on a schedule. Validation already
// purges expired rows it touches; this catches the ones nobody presents again.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"clinic-api/internal/metrics"
)

type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type Job struct {
	store   SessionPurger
	logger  *slog.Logger
	metrics metrics.AuthRecorder
	now     func() time.Time
}

func NewJob(store SessionPurger, logger *slog.Logger, rec metrics.AuthRecorder) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Job{store: store, logger: logger, metrics: rec, now: time.Now}
}

// Run deletes every session whose expiry is at or before now.
func (j *Job) Run(ctx context.Context) (int64, error) {
	start := time.Now()
	n, err := j.store.DeleteExpiredSessions(ctx, j.now())
	if err != nil {
		j.logger.ErrorContext(ctx, "session sweep failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	j.metrics.SessionsSwept(n)
	j.logger.InfoContext(ctx, "session sweep done",
		slog.Int64("deleted_count", n),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return n, nil
}

// Schedule registers the job on a new cron runner. The caller starts and
// stops the returned runner.
func (j *Job) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { _, _ = j.Run(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", spec, err)
	}
	return c, nil
}
