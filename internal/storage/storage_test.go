package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackendContract(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()
	key := "sponsorpath_user_test"

	_, ok, err := backend.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "fresh backend must not contain the key")

	require.NoError(t, backend.Save(ctx, key, []byte(`{"fullName":"Ada"}`)))
	value, ok, err := backend.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"fullName":"Ada"}`, string(value))

	require.NoError(t, backend.Save(ctx, key, []byte(`{"fullName":"Grace"}`)))
	value, ok, err = backend.Load(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"fullName":"Grace"}`, string(value), "last write wins")

	require.NoError(t, backend.Delete(ctx, key))
	_, ok, err = backend.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = backend.Load(ctx, "  ")
	assert.Error(t, err, "blank keys are rejected")
}

func TestMemoryBackend(t *testing.T) {
	testBackendContract(t, NewMemory())
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	value := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", value))
	value[0] = 'z'

	loaded, ok, err := m.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(loaded))
}

func TestFileBackend(t *testing.T) {
	backend, err := NewFile(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	testBackendContract(t, backend)
}

func TestFileBackendSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "sponsorpath_user", []byte(`{"matchesUsed":3}`)))

	second, err := NewFile(dir)
	require.NoError(t, err)
	value, ok, err := second.Load(ctx, "sponsorpath_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"matchesUsed":3}`, string(value))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileBackendRejectsPathKeys(t *testing.T) {
	backend, err := NewFile(t.TempDir())
	require.NoError(t, err)

	err = backend.Save(context.Background(), "../escape", []byte("x"))
	assert.Error(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "sponsorpath.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	testBackendContract(t, backend)
}

func TestSQLiteBackendSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sponsorpath.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "sponsorpath_user", []byte(`{"isOnboarded":true}`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	value, ok, err := second.Load(ctx, "sponsorpath_user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"isOnboarded":true}`, string(value))
}

func TestRedisBackend(t *testing.T) {
	url := os.Getenv("SPONSORPATH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SPONSORPATH_TEST_REDIS_URL is not set")
	}

	backend, err := OpenRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	testBackendContract(t, backend)
}

func TestPostgresBackend(t *testing.T) {
	url := os.Getenv("SPONSORPATH_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("SPONSORPATH_TEST_POSTGRES_URL is not set")
	}

	backend, err := OpenPostgres(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	testBackendContract(t, backend)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	backend, err := Open(ctx, Config{Backend: "MEMORY"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, backend)

	backend, err = Open(ctx, Config{Backend: "", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, backend, "file is the default backend")

	_, err = Open(ctx, Config{Backend: "etcd"})
	assert.ErrorContains(t, err, "unsupported storage backend")

	_, err = Open(ctx, Config{Backend: BackendRedis})
	assert.ErrorContains(t, err, "redis url is required")
}
