package cmd

import (
	"fmt"

	"github.com/corey/bundlekit/internal/adapters/esbuild"
	"github.com/corey/bundlekit/internal/app"
	"github.com/corey/bundlekit/internal/domain/bundle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildMode   string
	buildConfig string
	buildNoHash bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the bundler with the selected profile",
	Long: "Bundles the configured entries. The production profile also writes the manifest, " +
		"links logical names to hashed files, and rewrites HTML files (unless --no-hash).",
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildMode, "mode", "m", "", "Profile to merge (default BUNDLE_ENV / NODE_ENV)")
	buildCmd.Flags().StringVarP(&buildConfig, "config", "c", "", "Bundle config YAML (default BUNDLE_CONFIG or built-in)")
	buildCmd.Flags().BoolVar(&buildNoHash, "no-hash", false, "Skip rewriting HTML files after a manifest build")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildMode != "" {
		settings.Mode = buildMode
	}
	cfg, source, err := resolveProfile(buildConfig, settings.Mode)
	if err != nil {
		return err
	}
	logger.Debug("bundle config resolved", zap.String("source", source), zap.String("mode", settings.Mode))

	report, err := app.Build(cmd.Context(), logger, esbuild.New(""), settings, cfg)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatBuildReport(report))

	if !cfg.ManifestEnabled() || buildNoHash {
		return nil
	}
	return hashPublicDir(cmd, settings.Paths())
}

// modeOrDefault returns mode, falling back to development.
func modeOrDefault(mode string) string {
	if mode == "" {
		return bundle.ModeDevelopment
	}
	return mode
}
