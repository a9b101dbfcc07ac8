// Package scheduler runs a job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a standard five-field cron schedule. A run
// that is still going when the next one is due is skipped.
type Scheduler struct {
	cron *cron.Cron
	job  Job
	ctx  context.Context
	id   cron.EntryID

	// run is the job wrapped by the cron chain. Scheduled and startup runs
	// both go through it so they share one skip guard.
	run cron.Job
}

// New schedules job at spec. Runs receive ctx, so cancelling it aborts
// the run in progress.
func New(ctx context.Context, spec string, loc *time.Location, job Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		job: job,
		ctx: ctx,
	}

	id, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.id = id
	s.run = s.cron.Entry(id).WrappedJob
	return s, nil
}

// Start begins triggering the job. With runNow the job also runs once
// immediately in the background; a scheduled run due meanwhile is skipped.
func (s *Scheduler) Start(runNow bool) {
	if runNow {
		go s.run.Run()
	}
	s.cron.Start()
	slog.Info("scheduler started", "next_run", s.Next())
}

// Next returns the next scheduled run time, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.id).Next
}

// Stop stops triggering new runs and waits for a running job to finish
// or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out with a run in progress")
	}
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	slog.Info("scheduled run starting")
	if err := s.job(s.ctx); err != nil {
		slog.Error("scheduled run failed", "error", err, "elapsed", time.Since(start).Round(time.Millisecond))
		return
	}
	slog.Info("scheduled run finished", "elapsed", time.Since(start).Round(time.Millisecond))
}

// cronLogger adapts cron's logger to slog. Cron's routine messages go to
// Debug.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
