package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fanhub/metrics"
	"fanhub/notify"

	"github.com/jinzhu/gorm"
	"github.com/robfig/cron/v3"
)

const (
	JobExpireSubscriptions   = "expire-subscriptions"
	JobDispatchNotifications = "dispatch-notifications"
)

// Jobs holds what the scheduled jobs need; the CLI uses it to run a job once.
type Jobs struct {
	DB        *gorm.DB
	Publisher notify.Publisher
	Logger    *slog.Logger
}

// Names lists the jobs Run accepts.
func (j *Jobs) Names() []string {
	return []string{JobDispatchNotifications, JobExpireSubscriptions}
}

// Run executes one job by name and records its outcome.
func (j *Jobs) Run(ctx context.Context, name string) error {
	var err error
	switch name {
	case JobExpireSubscriptions:
		var res ExpireResult
		res, err = ExpireSubscriptions(j.DB, time.Now(), j.Logger)
		if err == nil {
			j.Logger.Info("subscriptions expired", "renewed", res.Renewed, "expired", res.Expired, "skipped", res.Skipped, "failed", res.Failed)
		}
	case JobDispatchNotifications:
		d := Dispatcher{DB: j.DB, Publisher: j.Publisher, Logger: j.Logger}
		var sent int
		if _, err = d.RequeueStale(time.Now()); err == nil {
			sent, err = d.DispatchPending(ctx)
		}
		if err == nil {
			j.Logger.Info("notifications dispatched", "sent", sent)
		}
	default:
		return fmt.Errorf("unknown job %q", name)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.JobRuns.WithLabelValues(name, outcome).Inc()
	return err
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
}

func NewScheduler(jobs *Jobs, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	return &Scheduler{cron: c, jobs: jobs, logger: logger}
}

// Schedule registers a job under a cron spec ("@every 10m", "0 3 * * *").
func (s *Scheduler) Schedule(spec string, name string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.jobs.Run(context.Background(), name); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("scheduled job", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler; the returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
