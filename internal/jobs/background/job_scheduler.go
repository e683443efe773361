package background

import (
	"context"
	"fmt"

	"homestock/internal/config"
	"homestock/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// JobScheduler owns the gocron scheduler and the jobs registered on it.
type JobScheduler struct {
	scheduler gocron.Scheduler
	logger    zerolog.Logger
}

// NewJobScheduler builds the scheduler and registers the tree audit on the
// configured interval. With auditing disabled the scheduler starts empty.
func NewJobScheduler(auditor *jobs.TreeAuditor, cfg config.Audit, logger zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		logger:    logger.With().Str("component", "job_scheduler").Logger(),
	}

	if cfg.Enabled {
		_, err := scheduler.NewJob(
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(func() {
				if _, runErr := auditor.Run(context.Background()); runErr != nil {
					js.logger.Error().Err(runErr).Msg("tree audit run failed")
				}
			}),
			gocron.WithName("tree-audit"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("register tree audit: %w", err)
		}
		js.logger.Info().Dur("interval", cfg.Interval).Msg("tree audit scheduled")
	}

	return js, nil
}

// Start begins running registered jobs on their schedules.
func (js *JobScheduler) Start() {
	js.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (js *JobScheduler) Stop() error {
	return js.scheduler.Shutdown()
}
