package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner cron with seconds field; a job never overlaps itself
type Runner struct {
	cron    *cron.Cron
	logger  *logrus.Logger
	baseCtx context.Context
}

// New jobs receive baseCtx, so cancelling it stops in-flight work
func New(baseCtx context.Context, logger *logrus.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	cronLogger := cron.VerbosePrintfLogger(logger)
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add registers job under spec; name is only used for logging
func (r *Runner) Add(name, spec string, job func(context.Context) error) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		start := time.Now()
		entry := r.logger.WithField("job", name)
		entry.Info("scheduled job started")
		if err := job(r.baseCtx); err != nil {
			entry.WithError(err).WithField("elapsed", time.Since(start).String()).Error("scheduled job failed")
			return
		}
		entry.WithField("elapsed", time.Since(start).String()).Info("scheduled job finished")
	})
}

func (r *Runner) Start() {
	r.logger.WithField("jobs", len(r.cron.Entries())).Info("cron started")
	r.cron.Start()
}

// Stop waits for running jobs to return
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
