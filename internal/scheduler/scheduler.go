// Package scheduler runs the cron job that starts a new unlock period.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/logger"
	"github.com/spigell/sponsorpath/internal/profile"
)

const DefaultSpec = "@monthly"

// Resetter starts a new unlock period. quota.Gate implements it.
type Resetter interface {
	ResetPeriod(ctx context.Context) (profile.UserProfile, error)
}

type Config struct {
	// Spec is a standard cron expression or descriptor such as "@monthly".
	Spec string
}

type Deps struct {
	Resetter Resetter
	Logger   *zap.Logger
}

// Scheduler wraps robfig/cron and owns the period reset job.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	schedule cron.Schedule
	resetter Resetter
	logger   *zap.Logger
	entry    cron.EntryID
}

func New(cfg *Config, deps *Deps) (*Scheduler, error) {
	if deps == nil || deps.Resetter == nil {
		return nil, errors.New("period resetter is required")
	}

	spec := DefaultSpec
	if cfg != nil && cfg.Spec != "" {
		spec = cfg.Spec
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing reset schedule %q: %w", spec, err)
	}

	log := logger.WithFields(deps.Logger, zap.String("schedule", spec))

	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cronLogger{log.Sugar()})),
		spec:     spec,
		schedule: schedule,
		resetter: deps.Resetter,
		logger:   log,
	}, nil
}

// Start registers the reset job and starts the cron loop in the background.
func (s *Scheduler) Start(ctx context.Context) {
	s.entry = s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		s.run(ctx)
	}))
	s.cron.Start()
	s.logger.Info("period reset scheduled", zap.Time("next", s.Next()))
}

// Stop halts the cron loop and waits for a running reset to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Next returns the time of the next reset, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) run(ctx context.Context) {
	updated, err := s.resetter.ResetPeriod(ctx)
	switch {
	case errors.Is(err, profile.ErrProfileNotInitialized):
		s.logger.Debug("no profile to reset yet")
	case err != nil:
		s.logger.Error("period reset failed", zap.Error(err))
	default:
		s.logger.Info("period reset finished",
			logger.QuotaFields(string(updated.SubscriptionTier), updated.MatchesUsed, updated.MatchesLimit)...,
		)
	}
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
