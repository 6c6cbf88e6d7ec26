package cmd

import (
	"fmt"

	"github.com/Iron-Ham/smali2java/internal/cache"
	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/Iron-Ham/smali2java/internal/decompiler"
	"github.com/Iron-Ham/smali2java/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app bundles what the decompiling commands share for one invocation.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *decompiler.Registry
	store    *cache.Store
}

// newApp loads and validates the configuration, opens the log file and builds
// the backend registry. extra options are applied after the config-derived ones.
func newApp(cmd *cobra.Command, extra ...decompiler.Option) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		l, err := logging.NewLogger(config.LogDir(), cfg.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			// Logging is never a reason to refuse work
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
		} else {
			logger = l
		}
	}

	root := cfg.ResolveCacheDir()
	opts := append(decompiler.OptionsFromConfig(cfg),
		decompiler.WithProvider(config.NewViperProvider(viper.GetViper())),
		decompiler.WithLogger(logger),
	)
	opts = append(opts, extra...)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: decompiler.NewRegistry(root, opts...),
		store:    cache.NewStore(nil, root),
	}, nil
}

// backend resolves the --backend flag, falling back to decompiler.backend.
func (a *app) backend(cmd *cobra.Command) (decompiler.Backend, error) {
	name := a.cfg.Decompiler.Backend
	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		name = f.Value.String()
	}
	return a.registry.Lookup(name)
}

func (a *app) close() {
	_ = a.logger.Close()
}
