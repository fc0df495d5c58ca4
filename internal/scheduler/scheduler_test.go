package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/sponsorpath/internal/profile"
)

type fakeResetter struct {
	calls int
	err   error
}

func (f *fakeResetter) ResetPeriod(context.Context) (profile.UserProfile, error) {
	f.calls++
	if f.err != nil {
		return profile.UserProfile{}, f.err
	}
	return profile.UserProfile{SubscriptionTier: profile.TierFree, MatchesLimit: 5}, nil
}

func TestNewValidatesSpec(t *testing.T) {
	if _, err := New(&Config{Spec: "every other tuesday"}, &Deps{Resetter: &fakeResetter{}}); err == nil {
		t.Fatalf("expected error for invalid spec")
	}

	if _, err := New(nil, nil); err == nil {
		t.Fatalf("expected error without resetter")
	}

	s, err := New(nil, &Deps{Resetter: &fakeResetter{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.spec != DefaultSpec {
		t.Fatalf("expected default spec, got %q", s.spec)
	}
}

func TestStartSchedulesNextReset(t *testing.T) {
	s, err := New(&Config{Spec: "0 0 1 * *"}, &Deps{Resetter: &fakeResetter{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.Next().IsZero() {
		t.Fatalf("expected no next run before start")
	}

	s.Start(context.Background())
	defer s.Stop()

	next := s.Next()
	if next.IsZero() {
		t.Fatalf("expected next run after start")
	}
	if next.Day() != 1 || next.Hour() != 0 || next.Minute() != 0 {
		t.Fatalf("expected the first day of a month at midnight, got %s", next)
	}
	if !next.After(time.Now()) {
		t.Fatalf("expected next run in the future, got %s", next)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   zapcore.Level
		message string
	}{
		{name: "success", level: zapcore.InfoLevel, message: "period reset finished"},
		{name: "no profile", err: profile.ErrProfileNotInitialized, level: zapcore.DebugLevel, message: "no profile to reset yet"},
		{name: "failure", err: errors.New("disk full"), level: zapcore.ErrorLevel, message: "period reset failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			resetter := &fakeResetter{err: tt.err}

			s, err := New(nil, &Deps{Resetter: resetter, Logger: zap.New(core)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			s.run(context.Background())

			if resetter.calls != 1 {
				t.Fatalf("expected one reset, got %d", resetter.calls)
			}

			entries := logs.FilterMessage(tt.message).All()
			if len(entries) != 1 {
				t.Fatalf("expected %q to be logged once, got %d", tt.message, len(entries))
			}
			if entries[0].Level != tt.level {
				t.Fatalf("expected level %s, got %s", tt.level, entries[0].Level)
			}
			if entries[0].ContextMap()["schedule"] != DefaultSpec {
				t.Fatalf("expected schedule field, got %v", entries[0].ContextMap())
			}
		})
	}
}
