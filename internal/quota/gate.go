// Package quota meters how many locked sponsor matches a profile may reveal per billing period.
package quota

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/logger"
	"github.com/spigell/sponsorpath/internal/profile"
)

type Reason string

// QuotaExceeded means the allowance of the current period is used up.
// It is a normal outcome, reported through Decision and never as an error.
const QuotaExceeded Reason = "QuotaExceeded"

// Decision is the result of an unlock attempt.
type Decision struct {
	Unlocked bool
	Reason   Reason
	Used     int
	Limit    int
}

func (d Decision) Remaining() int {
	return max(d.Limit-d.Used, 0)
}

// ProfileStore is the part of profile.Store the gate needs.
type ProfileStore interface {
	Get() (profile.UserProfile, bool)
	UpdateFunc(ctx context.Context, fn func(current profile.UserProfile) (*profile.Patch, error)) (profile.UserProfile, bool, error)
}

type Config struct {
	Limits Limits
}

type Deps struct {
	Store  ProfileStore
	Logger *zap.Logger
}

type Gate struct {
	store  ProfileStore
	limits Limits
	logger *zap.Logger
}

func New(cfg *Config, deps *Deps) (*Gate, error) {
	if deps == nil || deps.Store == nil {
		return nil, errors.New("profile store is required")
	}

	limits := DefaultLimits()
	if cfg != nil {
		limits = cfg.Limits
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	return &Gate{
		store:  deps.Store,
		limits: limits,
		logger: logger.WithFields(deps.Logger),
	}, nil
}

func (g *Gate) Limits() Limits {
	return g.limits
}

// TryUnlock spends one unlock on the company when the allowance permits.
// The check and the increment run inside the store's critical section, so
// concurrent callers can never push matchesUsed past matchesLimit.
// The caller flips the lock flag on its own projection.
func (g *Gate) TryUnlock(ctx context.Context, companyID string) (Decision, error) {
	var decision Decision

	_, _, err := g.store.UpdateFunc(ctx, func(current profile.UserProfile) (*profile.Patch, error) {
		decision = Decision{Used: current.MatchesUsed, Limit: current.MatchesLimit}
		if current.MatchesUsed >= current.MatchesLimit {
			decision.Reason = QuotaExceeded
			return nil, nil
		}

		decision.Unlocked = true
		decision.Used++
		return &profile.Patch{MatchesUsed: profile.Ptr(decision.Used)}, nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("unlocking %s: %w", companyID, err)
	}

	log := logger.WithCompany(g.logger, companyID, "")
	if decision.Unlocked {
		log.Info("company unlocked", zap.Int("remaining", decision.Remaining()))
	} else {
		log.Info("unlock rejected", zap.String("reason", string(decision.Reason)), zap.Int("limit", decision.Limit))
	}

	return decision, nil
}

// Upgrade switches the profile to the tier and its allowance. On a downgrade
// the used counter is clamped to the new limit.
func (g *Gate) Upgrade(ctx context.Context, tier profile.Tier) (profile.UserProfile, error) {
	if !tier.Valid() {
		return profile.UserProfile{}, fmt.Errorf("unknown subscription tier %q", tier)
	}
	limit := g.limits.For(tier)

	updated, changed, err := g.store.UpdateFunc(ctx, func(current profile.UserProfile) (*profile.Patch, error) {
		if current.SubscriptionTier == tier && current.MatchesLimit == limit && current.MatchesUsed <= limit {
			return nil, nil
		}

		patch := &profile.Patch{
			SubscriptionTier: profile.Ptr(tier),
			MatchesLimit:     profile.Ptr(limit),
		}
		if current.MatchesUsed > limit {
			patch.MatchesUsed = profile.Ptr(limit)
		}
		return patch, nil
	})
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("changing tier to %s: %w", tier, err)
	}

	if changed {
		g.logger.Info("subscription tier changed",
			logger.QuotaFields(string(updated.SubscriptionTier), updated.MatchesUsed, updated.MatchesLimit)...,
		)
	}

	return updated, nil
}

// ResetPeriod starts a new billing period by zeroing the used counter.
func (g *Gate) ResetPeriod(ctx context.Context) (profile.UserProfile, error) {
	updated, changed, err := g.store.UpdateFunc(ctx, func(current profile.UserProfile) (*profile.Patch, error) {
		if current.MatchesUsed == 0 {
			return nil, nil
		}
		return &profile.Patch{MatchesUsed: profile.Ptr(0)}, nil
	})
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("resetting unlock period: %w", err)
	}

	if changed {
		g.logger.Info("unlock period reset",
			logger.QuotaFields(string(updated.SubscriptionTier), updated.MatchesUsed, updated.MatchesLimit)...,
		)
	}

	return updated, nil
}

// Remaining returns how many unlocks are left, or zero without a profile.
func (g *Gate) Remaining() int {
	current, ok := g.store.Get()
	if !ok {
		return 0
	}
	return current.Remaining()
}
