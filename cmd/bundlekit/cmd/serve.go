package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/corey/bundlekit/internal/adapters/esbuild"
	"github.com/corey/bundlekit/internal/app"
	"github.com/spf13/cobra"
)

var (
	serveHost   string
	servePort   int
	serveMode   string
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch sources and serve the public directory",
	Long:  "Rebuilds on change and serves the public directory. Uses the development profile unless --mode is given.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Listen address")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Listen port (0 = any free port)")
	serveCmd.Flags().StringVarP(&serveMode, "mode", "m", "development", "Profile to merge")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Bundle config YAML (default BUNDLE_CONFIG or built-in)")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings.Mode = modeOrDefault(serveMode)
	cfg, _, err := resolveProfile(serveConfig, settings.Mode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx, logger, esbuild.New(""), settings, cfg, serveHost, servePort, func(addr string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s⚡ serving %s%s on http://%s\n",
			colorBold, settings.PublicDir, colorReset, addr)
	})
}
