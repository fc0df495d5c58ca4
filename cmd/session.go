package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/sponsorpath/internal/applications"
	"github.com/spigell/sponsorpath/internal/catalog"
	"github.com/spigell/sponsorpath/internal/logger"
	"github.com/spigell/sponsorpath/internal/profile"
	"github.com/spigell/sponsorpath/internal/quota"
	"github.com/spigell/sponsorpath/internal/secrets"
	"github.com/spigell/sponsorpath/internal/storage"
)

// session holds everything a command needs: the loaded profile store, the
// catalog and the services that mutate the profile.
type session struct {
	logger  *zap.Logger
	config  *Config
	backend storage.Backend
	store   *profile.Store
	catalog *catalog.Catalog
	gate    *quota.Gate
	tracker *applications.Tracker
}

// mustSession builds a session or exits through the logger, like every command does on setup errors.
func mustSession(ctx context.Context) *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	s, err := newSession(ctx, config, logger)
	if err != nil {
		logger.Fatal("starting", zap.Error(err))
	}

	return s
}

func newSession(ctx context.Context, config *Config, logger *zap.Logger) (*session, error) {
	logger.Debug("starting with config",
		zap.String("storage_backend", config.Storage.Backend),
		zap.String("storage_key", config.Storage.Key),
		zap.String("catalog_file", config.Catalog.File),
		zap.Any("quota_limits", config.Quota.Limits),
	)

	backend, err := openStorage(ctx, config.Storage)
	if err != nil {
		return nil, err
	}

	store, err := profile.NewStore(
		&profile.StoreConfig{
			Key:      config.Storage.Key,
			Defaults: profile.Default(config.Quota.Limits.For(profile.TierFree)),
		},
		&profile.StoreDeps{Storage: backend, Logger: logger},
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	if err := store.Load(ctx); err != nil {
		backend.Close()
		return nil, err
	}

	sponsors, err := loadCatalog(config.Catalog)
	if err != nil {
		backend.Close()
		return nil, err
	}
	logger.Debug("catalog loaded", zap.Int("sponsors", sponsors.Len()))

	gate, err := quota.New(&quota.Config{Limits: config.Quota.Limits}, &quota.Deps{Store: store, Logger: logger})
	if err != nil {
		backend.Close()
		return nil, err
	}

	tracker, err := applications.New(&applications.Deps{Store: store, Logger: logger})
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &session{
		logger:  logger,
		config:  config,
		backend: backend,
		store:   store,
		catalog: sponsors,
		gate:    gate,
		tracker: tracker,
	}, nil
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("closing storage", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// requireProfile returns the current profile or exits with the onboarding hint.
func (s *session) requireProfile() profile.UserProfile {
	current, ok := s.store.Get()
	if !ok {
		s.logger.Fatal("no profile yet",
			zap.Error(profile.ErrProfileNotInitialized),
			zap.String("hint", "run `sponsorpath profile onboard` first"),
		)
	}
	return current
}

func openStorage(ctx context.Context, cfg StorageConfig) (storage.Backend, error) {
	url := ""
	if cfg.Backend == storage.BackendRedis || cfg.Backend == storage.BackendPostgres {
		var err error
		url, err = secrets.Load(secrets.Source{
			Name:  cfg.Backend + " url",
			Value: cfg.URL,
			File:  cfg.URLFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set storage.url-file or %s_STORAGE_URL)", err, envPrefix)
		}
	}

	backend, err := storage.Open(ctx, storage.Config{Backend: cfg.Backend, Path: cfg.Path, URL: url})
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Backend, err)
	}
	return backend, nil
}

func loadCatalog(cfg CatalogConfig) (*catalog.Catalog, error) {
	if cfg.File == "" {
		return catalog.Sample(), nil
	}

	sponsors, err := catalog.LoadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return sponsors, nil
}
