// Package scheduler runs the recurring background jobs: cooldown release
// and traffic dispatch.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Freskan23/cuentascontrol/internal/config"
)

// cooldownReleaser reactivates accounts whose cooldown window has passed.
type cooldownReleaser interface {
	ReleaseExpiredCooldowns(ctx context.Context) (int, error)
}

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New builds a scheduler with the cooldown and traffic jobs registered
// per the config specs. Jobs recover from panics and never overlap with
// a still-running previous run of themselves.
func New(log *slog.Logger, cfg config.SchedulerConfig, cooldowns cooldownReleaser, traffic *TrafficDispatcher) (*Scheduler, error) {
	log = log.With("component", "scheduler")

	cronLog := &cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		),
	)

	s := &Scheduler{cron: c, log: log}

	_, err := c.AddFunc(cfg.CooldownSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		released, err := cooldowns.ReleaseExpiredCooldowns(ctx)
		if err != nil {
			log.ErrorContext(ctx, "cooldown release failed", slog.Any("error", err))
			return
		}
		if released > 0 {
			log.InfoContext(ctx, "cooldown release finished", slog.Int("released", released))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register cooldown job %q: %w", cfg.CooldownSpec, err)
	}

	_, err = c.AddFunc(cfg.TrafficSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if _, err := traffic.DispatchDue(ctx); err != nil {
			log.ErrorContext(ctx, "traffic dispatch failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register traffic job %q: %w", cfg.TrafficSpec, err)
	}

	return s, nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
