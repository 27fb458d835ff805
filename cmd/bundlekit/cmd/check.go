package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/bundlekit/internal/app"
	"github.com/corey/bundlekit/internal/domain/manifest"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report stale or broken asset references in HTML files",
	Long: "Scans script[src] and link[href] references in every HTML file under the public directory. " +
		"Reports references that still use a logical name from the manifest and references to files " +
		"that do not exist. Exits 1 when anything is found.",
	Args:          cobra.NoArgs,
	RunE:          runCheck,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func runCheck(cmd *cobra.Command, args []string) error {
	p := settings.Paths()
	m, err := manifest.Load(p.Manifest)
	if err != nil && !errors.Is(err, manifest.ErrNotFound) {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		return exitError{code: 2}
	}

	problems, files, err := app.CheckReferences(logger, p.PublicDir, m)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		return exitError{code: 2}
	}
	fmt.Fprint(cmd.OutOrStdout(), formatProblems(problems, files))
	if len(problems) > 0 {
		return exitError{code: 1}
	}
	return nil
}
