package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configMode string
	configFile string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the resolved settings and the bundle profile that build would use.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configMode, "mode", "m", "", "Profile to merge (default BUNDLE_ENV / NODE_ENV)")
	configCmd.Flags().StringVarP(&configFile, "config", "c", "", "Bundle config YAML (default BUNDLE_CONFIG or built-in)")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configMode != "" {
		settings.Mode = configMode
	}
	cfg, source, err := resolveProfile(configFile, settings.Mode)
	if err != nil {
		return err
	}
	p := settings.Paths()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ bundlekit config%s\n", colorBold, colorReset)
	fmt.Fprintf(out, "  Mode:        %s%s%s\n", colorMagenta, settings.Mode, colorReset)
	fmt.Fprintf(out, "  Public:      %s\n", p.PublicDir)
	fmt.Fprintf(out, "  Output:      %s\n", p.OutputDir)
	fmt.Fprintf(out, "  Public path: %s\n", p.PublicPath)
	fmt.Fprintf(out, "  Manifest:    %s\n", p.Manifest)
	fmt.Fprintf(out, "  Config:      %s\n", source)
	if keys := settings.DefineKeys(); len(keys) > 0 {
		fmt.Fprintf(out, "  Define:      %s\n", strings.Join(keys, ", "))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	fmt.Fprintf(out, "\n%s# resolved profile%s\n%s", colorGray, colorReset, data)
	return nil
}
