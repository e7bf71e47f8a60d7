// Package scheduler is the recurring-trigger capability the jobs depend on.
// Jobs only see the Scheduler interface so they can be driven by hand in tests.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Job func(ctx context.Context)

type Scheduler interface {
	// Register runs job every time spec fires. spec uses the standard
	// 5-field cron syntax or descriptors such as "@every 1h".
	Register(name, spec string, job Job) error
}

// Cron is the production Scheduler. A job still running when its next
// trigger fires is skipped rather than overlapped.
type Cron struct {
	c   *cron.Cron
	ctx context.Context
}

func NewCron(ctx context.Context, loc *time.Location) *Cron {
	if loc == nil {
		loc = time.UTC
	}
	return &Cron{
		c: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		ctx: ctx,
	}
}

func (s *Cron) Register(name, spec string, job Job) error {
	_, err := s.c.AddFunc(spec, func() {
		start := time.Now()
		slog.Info("Job started", slog.String("job", name))
		job(s.ctx)
		slog.Info("Job finished", slog.String("job", name), slog.Duration("took", time.Since(start)))
	})
	if err != nil {
		return err
	}
	slog.Info("Job registered", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

func (s *Cron) Start() {
	s.c.Start()
}

// Stop stops triggering and waits for running jobs to return.
func (s *Cron) Stop() {
	<-s.c.Stop().Done()
}
