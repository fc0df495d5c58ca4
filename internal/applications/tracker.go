// Package applications records the sponsors a user has formally applied to.
// An application is the only durable unlock: applied companies are never locked again.
package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/logger"
	"github.com/spigell/sponsorpath/internal/profile"
)

// ProfileStore is the part of profile.Store the tracker needs.
type ProfileStore interface {
	Get() (profile.UserProfile, bool)
	UpdateFunc(ctx context.Context, fn func(current profile.UserProfile) (*profile.Patch, error)) (profile.UserProfile, bool, error)
}

type Deps struct {
	Store  ProfileStore
	Logger *zap.Logger
}

type Tracker struct {
	store  ProfileStore
	logger *zap.Logger
}

func New(deps *Deps) (*Tracker, error) {
	if deps == nil || deps.Store == nil {
		return nil, errors.New("profile store is required")
	}
	return &Tracker{store: deps.Store, logger: logger.WithFields(deps.Logger)}, nil
}

// AddApplication records an application to the company. Applying twice is a
// no-op; the boolean reports whether the id was new.
func (t *Tracker) AddApplication(ctx context.Context, companyID string) (bool, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return false, errors.New("company id is required")
	}

	_, added, err := t.store.UpdateFunc(ctx, func(current profile.UserProfile) (*profile.Patch, error) {
		if current.HasApplied(companyID) {
			return nil, nil
		}
		return &profile.Patch{Applications: &[]string{companyID}}, nil
	})
	if err != nil {
		return false, fmt.Errorf("recording application to %s: %w", companyID, err)
	}

	log := logger.WithCompany(t.logger, companyID, "")
	if added {
		log.Info("application recorded")
	} else {
		log.Debug("already applied")
	}

	return added, nil
}

// HasApplied reports whether the company is in the applications set. It is false without a profile.
func (t *Tracker) HasApplied(companyID string) bool {
	current, ok := t.store.Get()
	if !ok {
		return false
	}
	return current.HasApplied(companyID)
}

// Applications returns the applied company ids in the order they were added.
func (t *Tracker) Applications() []string {
	current, ok := t.store.Get()
	if !ok {
		return []string{}
	}
	return current.Applications
}
