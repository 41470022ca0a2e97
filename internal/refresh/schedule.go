package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fredlens/internal/logger"
)

// RunOnSchedule re-runs the job on a cron schedule until ctx is cancelled.
// The job's End advances to "today" on every run so a long-lived schedule
// keeps picking up new observations.
func (j *Job) RunOnSchedule(ctx context.Context, spec string, names []string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		j.End = time.Now().UTC().Truncate(24 * time.Hour)
		summary := j.Run(ctx, names)
		if err := summary.Err(); err != nil {
			logger.L().Error().Err(err).Msg("scheduled refresh finished with errors")
		} else {
			logger.L().Info().Int("rows", summary.Written()).Msg("scheduled refresh done")
		}
	})
	if err != nil {
		return fmt.Errorf("register cron %q: %w", spec, err)
	}

	c.Start()
	defer c.Stop()
	logger.L().Info().Str("cron", spec).Msg("refresh schedule started")

	<-ctx.Done()
	logger.L().Info().Msg("refresh schedule stopped")
	return nil
}
