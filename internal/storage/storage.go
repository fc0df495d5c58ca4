// Package storage provides durable key-value backends for profile snapshots.
package storage

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Backend is a key-value store that survives process restarts (except memory).
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Path is a directory for the file backend and a database file for sqlite.
	Path string
	// URL is a connection string for redis and postgres.
	URL string
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return NewFile(cfg.Path)
	case BackendSQLite:
		return OpenSQLite(cfg.Path)
	case BackendRedis:
		return OpenRedis(ctx, cfg.URL)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func validateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("storage key is required")
	}
	return key, nil
}
