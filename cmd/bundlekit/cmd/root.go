package cmd

import (
	"fmt"

	"github.com/corey/bundlekit/configs"
	"github.com/corey/bundlekit/internal/app"
	"github.com/corey/bundlekit/internal/domain/bundle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	envFile string
	verbose bool

	logger   *zap.Logger
	settings *app.Settings
)

var rootCmd = &cobra.Command{
	Use:   "bundlekit",
	Short: "bundlekit — bundler config and asset filename hashing",
	Long: `Runs the external bundler with the development or production profile and
rewrites HTML files under the public directory to reference hashed assets.

Settings come from the environment and .env:
  BUNDLE_PUBLIC_DIR  (public)     BUNDLE_OUTPUT_DIR  (assets)
  BUNDLE_MANIFEST    (<public>/<output>/manifest.json)
  BUNDLE_ENV / NODE_ENV (development)   BUNDLE_CONFIG (built-in profile)
WEBPACK_PUBLIC_DIR, WEBPACK_OUTPUT_DIR and WEBPACK_MANIFEST are read when
the BUNDLE_* name is unset.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		settings, err = app.LoadSettings(envFile)
		if err != nil {
			return err
		}
		logger.Debug("settings loaded",
			zap.String("public_dir", settings.PublicDir),
			zap.String("output_dir", settings.OutputDir),
			zap.String("manifest", settings.Manifest),
			zap.String("mode", settings.Mode))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (default .env, optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
}

// loadBundleConfig returns the bundle config named by path, BUNDLE_CONFIG,
// or the built-in default, in that order.
func loadBundleConfig(path string) (bundle.Config, string, error) {
	if path == "" {
		path = settings.ConfigFile
	}
	if path == "" {
		cfg, err := bundle.LoadFS(configs.FS, configs.Default)
		return cfg, "built-in", err
	}
	cfg, err := bundle.LoadFile(path)
	return cfg, path, err
}

// resolveProfile loads the bundle config and merges the profile for mode.
func resolveProfile(path, mode string) (bundle.Config, string, error) {
	cfg, source, err := loadBundleConfig(path)
	if err != nil {
		return bundle.Config{}, "", err
	}
	resolved, err := cfg.Resolve(mode)
	if err != nil {
		return bundle.Config{}, "", err
	}
	return resolved, source, nil
}
