package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/logger"
)

// DefaultKey is the storage key the profile snapshot is kept under.
const DefaultKey = "sponsorpath_user"

const snapshotPreviewLength = 120

// ErrProfileNotInitialized is returned by operations that need an existing profile.
var ErrProfileNotInitialized = errors.New("profile is not initialized: please complete onboarding first")

// Storage is a durable key-value store holding serialized snapshots.
type Storage interface {
	// Load returns the value stored under key. The boolean is false when the key is absent.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

type StoreConfig struct {
	Key      string
	Defaults UserProfile
}

type StoreDeps struct {
	Storage Storage
	Logger  *zap.Logger
}

// Store owns the single UserProfile and persists it after every mutation.
// All reads and writes go through one mutex.
type Store struct {
	mu       sync.Mutex
	key      string
	defaults UserProfile
	storage  Storage
	logger   *zap.Logger
	current  *UserProfile
}

func NewStore(cfg *StoreConfig, deps *StoreDeps) (*Store, error) {
	if deps == nil || deps.Storage == nil {
		return nil, errors.New("profile storage is required")
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	key := DefaultKey
	defaults := Default(0)
	if cfg != nil {
		if k := strings.TrimSpace(cfg.Key); k != "" {
			key = k
		}
		defaults = cfg.Defaults.Clone()
		defaults.normalize()
	}

	if err := defaults.validate(); err != nil {
		return nil, fmt.Errorf("invalid default profile: %w", err)
	}

	return &Store{
		key:      key,
		defaults: defaults,
		storage:  deps.Storage,
		logger:   log.With(zap.String("profile_key", key)),
	}, nil
}

// Load reads the persisted snapshot. A missing key leaves the store uninitialized.
// A snapshot that cannot be decoded is treated the same way and only logged.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.readSnapshot(ctx)
	if err != nil {
		return err
	}

	s.current = loaded
	if loaded != nil {
		s.logger.Debug("profile snapshot loaded",
			logger.QuotaFields(string(loaded.SubscriptionTier), loaded.MatchesUsed, loaded.MatchesLimit)...,
		)
	}

	return nil
}

// readSnapshot returns the stored profile, or nil when it is absent or unusable.
func (s *Store) readSnapshot(ctx context.Context) (*UserProfile, error) {
	raw, ok, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("loading profile snapshot: %w", err)
	}
	if !ok {
		s.logger.Debug("no profile snapshot found")
		return nil, nil
	}

	var loaded UserProfile
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.logger.Warn("ignoring malformed profile snapshot",
			zap.Error(err),
			zap.String("snapshot_preview", logger.TruncateForLog(string(raw), snapshotPreviewLength)),
		)
		return nil, nil
	}

	loaded.normalize()
	if err := loaded.validate(); err != nil {
		s.logger.Warn("ignoring invalid profile snapshot", zap.Error(err))
		return nil, nil
	}

	return &loaded, nil
}

// refresh picks up writes made through other stores sharing the same storage.
// An absent or unusable snapshot keeps the in-memory profile.
// Must be called with the mutex held.
func (s *Store) refresh(ctx context.Context) error {
	loaded, err := s.readSnapshot(ctx)
	if err != nil {
		return err
	}
	if loaded != nil {
		s.current = loaded
	}
	return nil
}

// Get returns a copy of the current profile. The boolean is false before first initialization.
func (s *Store) Get() (UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return UserProfile{}, false
	}
	return s.current.Clone(), true
}

// Defaults returns the profile used on first initialization and reset.
func (s *Store) Defaults() UserProfile {
	return s.defaults.Clone()
}

// Update merges the patch over the stored profile, or over the defaults on first use,
// persists the result and returns the new snapshot.
func (s *Store) Update(ctx context.Context, patch Patch) (UserProfile, error) {
	if err := patch.Validate(); err != nil {
		return UserProfile{}, fmt.Errorf("invalid profile patch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return UserProfile{}, err
	}

	base := s.defaults
	if s.current != nil {
		base = *s.current
	}

	return s.commit(ctx, base, patch)
}

// UpdateFunc runs a read-check-write step inside the store's critical section.
// The stored snapshot is re-read first, so fn sees writes made by other processes.
// fn receives the current profile and returns the patch to apply, or nil to leave
// the profile unchanged. The boolean reports whether a patch was committed.
func (s *Store) UpdateFunc(ctx context.Context, fn func(current UserProfile) (*Patch, error)) (UserProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return UserProfile{}, false, err
	}
	if s.current == nil {
		return UserProfile{}, false, ErrProfileNotInitialized
	}

	patch, err := fn(s.current.Clone())
	if err != nil {
		return UserProfile{}, false, err
	}

	if patch == nil || patch.IsEmpty() {
		return s.current.Clone(), false, nil
	}

	if err := patch.Validate(); err != nil {
		return UserProfile{}, false, fmt.Errorf("invalid profile patch: %w", err)
	}

	updated, err := s.commit(ctx, *s.current, *patch)
	if err != nil {
		return UserProfile{}, false, err
	}

	return updated, true, nil
}

// CompleteOnboarding saves the onboarding answers and marks the profile as onboarded in one write.
func (s *Store) CompleteOnboarding(ctx context.Context, answers Patch) (UserProfile, error) {
	answers.IsOnboarded = Ptr(true)
	return s.Update(ctx, answers)
}

// Reset replaces the profile with the defaults and persists them.
func (s *Store) Reset(ctx context.Context) (UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reset := s.defaults.Clone()
	if err := s.persist(ctx, reset); err != nil {
		return UserProfile{}, err
	}

	s.current = &reset
	s.logger.Info("profile reset to defaults")

	return reset.Clone(), nil
}

// commit must be called with the mutex held.
func (s *Store) commit(ctx context.Context, base UserProfile, patch Patch) (UserProfile, error) {
	next := base.Clone()
	patch.apply(&next)
	next.normalize()

	if err := next.validate(); err != nil {
		return UserProfile{}, fmt.Errorf("invalid profile: %w", err)
	}

	if err := s.persist(ctx, next); err != nil {
		return UserProfile{}, err
	}

	s.current = &next
	return next.Clone(), nil
}

func (s *Store) persist(ctx context.Context, p UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile snapshot: %w", err)
	}

	if err := s.storage.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("saving profile snapshot: %w", err)
	}

	s.logger.Debug("profile snapshot saved", zap.Int("bytes", len(data)))
	return nil
}
