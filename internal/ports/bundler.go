package ports

import (
	"context"

	"github.com/corey/bundlekit/internal/domain/bundle"
	"github.com/corey/bundlekit/internal/domain/manifest"
)

// BuildRequest is everything the bundler needs for one build.
type BuildRequest struct {
	Config     bundle.Config     // resolved profile
	OutputDir  string            // absolute or cwd-relative output directory
	PublicPath string            // URL prefix of the output directory, e.g. /assets/
	Define     map[string]string // global identifier substitutions
}

// BuildOutput describes what a build emitted.
type BuildOutput struct {
	// Outputs lists emitted files relative to the output directory.
	// Entry is empty for shared chunks.
	Outputs  []manifest.Output
	Warnings []string
}

// Bundler runs the external bundler. The concrete implementation (esbuild)
// lives in internal/adapters/esbuild. Module resolution, transpilation,
// chunking and minification are entirely the bundler's concern.
type Bundler interface {
	// Build runs a one-shot build and writes the outputs to disk.
	// Bundler diagnostics at error level are returned as a single error.
	Build(ctx context.Context, req BuildRequest) (*BuildOutput, error)

	// Serve rebuilds on change and serves servedir over HTTP until ctx is
	// cancelled. onReady is called once with the listening address.
	Serve(ctx context.Context, req BuildRequest, servedir, host string, port int, onReady func(addr string)) error
}
