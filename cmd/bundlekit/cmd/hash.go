package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/bundlekit/internal/app"
	"github.com/corey/bundlekit/internal/domain/manifest"
	"github.com/spf13/cobra"
)

var (
	hashDryRun bool
	hashJobs   int
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Rewrite HTML files to reference hashed assets",
	Long: "Loads the manifest and replaces every logical asset name with its hashed name " +
		"in each HTML file under the public directory. Without a manifest nothing is modified.",
	Args: cobra.NoArgs,
	RunE: runHash,
}

func init() {
	hashCmd.Flags().BoolVarP(&hashDryRun, "dry-run", "n", false, "Report what would change without writing")
	hashCmd.Flags().IntVarP(&hashJobs, "jobs", "j", 0, "Files rewritten in parallel (0 = GOMAXPROCS)")
}

func runHash(cmd *cobra.Command, args []string) error {
	return hashPublicDir(cmd, settings.Paths())
}

// hashPublicDir runs the hash pass. A missing manifest is reported and is
// not an error.
func hashPublicDir(cmd *cobra.Command, p *app.Paths) error {
	result, err := app.HashFromManifest(cmd.Context(), logger, p, app.HashOptions{
		Jobs:   hashJobs,
		DryRun: hashDryRun,
	})
	if errors.Is(err, manifest.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "Manifest not found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("hash asset filenames: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatHashResult(result, hashDryRun))
	return nil
}
