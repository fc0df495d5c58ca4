package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/sponsorpath/internal/profile"
	"github.com/spigell/sponsorpath/internal/quota"
	"github.com/spigell/sponsorpath/internal/scheduler"
	"github.com/spigell/sponsorpath/internal/storage"
)

const (
	app       = "sponsorpath"
	envPrefix = "SPONSORPATH"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Quota   QuotaConfig   `mapstructure:"quota"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory file sqlite redis postgres"`
	Key     string `mapstructure:"key" validate:"required"`
	// Path is a directory for the file backend and a database file for sqlite.
	Path    string `mapstructure:"path" validate:"required_if=Backend sqlite"`
	URL     string `mapstructure:"url" json:"-"`
	URLFile string `mapstructure:"url-file"`
}

type CatalogConfig struct {
	// File is a Home Office sponsor register CSV. The embedded sample is used when empty.
	File string `mapstructure:"file"`
}

type QuotaConfig struct {
	Limits        quota.Limits `mapstructure:"limits"`
	ResetSchedule string       `mapstructure:"reset-schedule" validate:"required"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "sponsorpath matches UK visa sponsors against your profile and meters how many you can unlock",
	}
)

// Execute executes the root command. The command context is cancelled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is sponsorpath.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("storage", "", "storage backend: memory, file, sqlite, redis or postgres")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	limits := quota.DefaultLimits()

	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.key", profile.DefaultKey)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.url", "")
	v.SetDefault("storage.url-file", "")
	v.SetDefault("catalog.file", "")
	v.SetDefault("quota.limits.free", limits.Free)
	v.SetDefault("quota.limits.basic", limits.Basic)
	v.SetDefault("quota.limits.pro", limits.Pro)
	v.SetDefault("quota.limits.unlimited", limits.Unlimited)
	v.SetDefault("quota.reset-schedule", scheduler.DefaultSpec)
}

func initConfig() {
	// A missing .env is fine; it only supplies SPONSORPATH_* overrides.
	_ = godotenv.Load()

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig wires env overrides and reads the config file. Without an explicit
// file a missing sponsorpath.yaml is not an error.
func readConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
