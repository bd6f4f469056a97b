package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled analysis run.
type Job func(ctx context.Context)

// Scheduler triggers a job on a cron expression with a seconds field.
// Cron ticks and manual RunNow calls share one guard: a trigger that arrives
// while a run is in progress is skipped.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context
	job  Job

	running sync.Mutex
	mu      sync.Mutex
	entries []cron.EntryID
}

// NewScheduler creates a Scheduler whose runs share ctx.
func NewScheduler(ctx context.Context, job Job) *Scheduler {
	logger := zerolog.Ctx(ctx).With().Str("component", "scheduler").Logger()
	cronLogger := cron.PrintfLogger(&logger)
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		Ctx: ctx,
		job: job,
	}
}

// Register adds the job under spec.
func (s *Scheduler) Register(spec string) error {
	id, err := s.Cron.AddFunc(spec, func() { s.RunNow() })
	if err != nil {
		return fmt.Errorf("register analysis task %q: %w", spec, err)
	}
	s.mu.Lock()
	s.entries = append(s.entries, id)
	s.mu.Unlock()
	zerolog.Ctx(s.Ctx).Info().Str("cron", spec).Msg("analysis task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zerolog.Ctx(s.Ctx).Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zerolog.Ctx(s.Ctx).Info().Msg("scheduler stopped")
}

// RunNow executes the job immediately (manual trigger / run on start). It
// reports false without running when another run is in progress.
func (s *Scheduler) RunNow() bool {
	if !s.running.TryLock() {
		zerolog.Ctx(s.Ctx).Warn().Msg("analysis task still running, trigger skipped")
		return false
	}
	defer s.running.Unlock()
	zerolog.Ctx(s.Ctx).Info().Msg("running analysis task")
	s.job(s.Ctx)
	return true
}

// Next returns the next activation time of every registered entry, formatted
// as RFC3339.
func (s *Scheduler) Next() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, id := range s.entries {
		if next := s.Cron.Entry(id).Next; !next.IsZero() {
			out = append(out, next.Format("2006-01-02T15:04:05Z07:00"))
		}
	}
	return out
}
