package applications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/sponsorpath/internal/profile"
	"github.com/spigell/sponsorpath/internal/storage"
)

func newTracker(t *testing.T, onboard bool) (*Tracker, *profile.Store, *storage.Memory) {
	t.Helper()

	backend := storage.NewMemory()
	store, err := profile.NewStore(&profile.StoreConfig{Defaults: profile.Default(5)}, &profile.StoreDeps{Storage: backend})
	require.NoError(t, err)

	if onboard {
		_, err = store.CompleteOnboarding(context.Background(), profile.Patch{})
		require.NoError(t, err)
	}

	tracker, err := New(&Deps{Store: store})
	require.NoError(t, err)
	return tracker, store, backend
}

func TestAddApplicationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tracker, store, _ := newTracker(t, true)

	added, err := tracker.AddApplication(ctx, "uk-gov-1")
	require.NoError(t, err)
	assert.True(t, added)

	once, _ := store.Get()

	added, err = tracker.AddApplication(ctx, "uk-gov-1")
	require.NoError(t, err)
	assert.False(t, added)

	twice, _ := store.Get()
	assert.Equal(t, once.Applications, twice.Applications)
	assert.Equal(t, []string{"uk-gov-1"}, tracker.Applications())
}

func TestAddApplicationKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTracker(t, true)

	for _, id := range []string{"uk-gov-3", "uk-gov-1", "uk-gov-3", "uk-gov-2"} {
		_, err := tracker.AddApplication(ctx, id)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"uk-gov-3", "uk-gov-1", "uk-gov-2"}, tracker.Applications())
	assert.True(t, tracker.HasApplied("uk-gov-2"))
	assert.False(t, tracker.HasApplied("uk-gov-4"))
}

func TestAddApplicationPersists(t *testing.T) {
	ctx := context.Background()
	tracker, _, backend := newTracker(t, true)

	_, err := tracker.AddApplication(ctx, "uk-gov-7")
	require.NoError(t, err)

	reloaded, err := profile.NewStore(nil, &profile.StoreDeps{Storage: backend})
	require.NoError(t, err)
	require.NoError(t, reloaded.Load(ctx))

	p, ok := reloaded.Get()
	require.True(t, ok)
	assert.True(t, p.HasApplied("uk-gov-7"))
}

func TestAddApplicationDoesNotTouchQuota(t *testing.T) {
	ctx := context.Background()
	tracker, store, _ := newTracker(t, true)

	_, err := tracker.AddApplication(ctx, "uk-gov-1")
	require.NoError(t, err)

	p, _ := store.Get()
	assert.Equal(t, 0, p.MatchesUsed)
}

func TestAddApplicationRequiresProfile(t *testing.T) {
	tracker, _, _ := newTracker(t, false)

	_, err := tracker.AddApplication(context.Background(), "uk-gov-1")
	assert.True(t, errors.Is(err, profile.ErrProfileNotInitialized))
	assert.False(t, tracker.HasApplied("uk-gov-1"))
	assert.Empty(t, tracker.Applications())
}

func TestAddApplicationRejectsBlankID(t *testing.T) {
	tracker, _, _ := newTracker(t, true)

	_, err := tracker.AddApplication(context.Background(), "  ")
	assert.Error(t, err)
}

func TestAddApplicationConcurrent(t *testing.T) {
	tracker, _, _ := newTracker(t, true)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := tracker.AddApplication(context.Background(), "uk-gov-5")
			if err == nil && ok {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"uk-gov-5"}, tracker.Applications())
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
