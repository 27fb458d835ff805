// Package esbuild implements the ports.Bundler interface using github.com/evanw/esbuild.
// Each build runs as two passes (scripts, styles) so both kinds of entry land
// under their own name template. Output paths are read back from the metafile.
package esbuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/corey/bundlekit/internal/domain/manifest"
	"github.com/corey/bundlekit/internal/ports"
	"github.com/evanw/esbuild/pkg/api"
)

// Bundler implements ports.Bundler.
type Bundler struct {
	// WorkDir is the directory entry paths are relative to. Empty means the
	// process working directory.
	WorkDir string
}

var _ ports.Bundler = (*Bundler)(nil)

// New creates a bundler rooted at workDir.
func New(workDir string) *Bundler {
	return &Bundler{WorkDir: workDir}
}

func (b *Bundler) dirs(outputDir string) (string, string, error) {
	workDir := b.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		workDir = wd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", "", err
	}
	outDir := outputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(workDir, outDir)
	}
	return workDir, outDir, nil
}

// Build runs every pass once. Cancelling ctx cancels the pass in flight.
func (b *Bundler) Build(ctx context.Context, req ports.BuildRequest) (*ports.BuildOutput, error) {
	workDir, outDir, err := b.dirs(req.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve dirs: %w", err)
	}

	out := &ports.BuildOutput{}
	for _, p := range planPasses(req.Config) {
		opts := buildOptions(req, p, workDir, outDir)

		bctx, cerr := api.Context(opts)
		if cerr != nil {
			return nil, fmt.Errorf("%s: %w", p.name, messagesError(cerr.Errors))
		}
		stop := context.AfterFunc(ctx, bctx.Cancel)
		result := bctx.Rebuild()
		stop()
		bctx.Dispose()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(result.Errors) > 0 {
			return nil, fmt.Errorf("%s: %w", p.name, messagesError(result.Errors))
		}
		out.Warnings = append(out.Warnings, formatMessages(result.Warnings)...)

		outputs, err := outputsFromMetafile(result.Metafile, p.inputs, workDir, outDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
		out.Outputs = append(out.Outputs, outputs...)
	}
	return out, nil
}

// Serve watches every pass and serves servedir on host:port. The first pass
// owns the HTTP server; the others write to disk under servedir.
func (b *Bundler) Serve(ctx context.Context, req ports.BuildRequest, servedir, host string, port int, onReady func(addr string)) error {
	workDir, outDir, err := b.dirs(req.OutputDir)
	if err != nil {
		return fmt.Errorf("resolve dirs: %w", err)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	absServe, err := filepath.Abs(servedir)
	if err != nil {
		return err
	}

	passes := planPasses(req.Config)
	if len(passes) == 0 {
		return errors.New("no entries to serve")
	}

	var contexts []api.BuildContext
	defer func() {
		for _, c := range contexts {
			c.Dispose()
		}
	}()

	for _, p := range passes {
		opts := buildOptions(req, p, workDir, outDir)
		opts.LogLevel = api.LogLevelInfo

		bctx, cerr := api.Context(opts)
		if cerr != nil {
			return fmt.Errorf("%s: %w", p.name, messagesError(cerr.Errors))
		}
		contexts = append(contexts, bctx)
		if err := bctx.Watch(api.WatchOptions{}); err != nil {
			return fmt.Errorf("%s: watch: %w", p.name, err)
		}
	}

	res, err := contexts[0].Serve(api.ServeOptions{
		Host:     host,
		Port:     uint16(port),
		Servedir: absServe,
	})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if onReady != nil {
		onReady(net.JoinHostPort(res.Host, strconv.Itoa(int(res.Port))))
	}

	<-ctx.Done()
	return nil
}

// metafile is the subset of esbuild's metafile JSON that is read back.
type metafile struct {
	Outputs map[string]struct {
		EntryPoint string `json:"entryPoint,omitempty"`
	} `json:"outputs"`
}

// outputsFromMetafile lists emitted files relative to outDir, sorted by path.
// Metafile paths are relative to workDir.
func outputsFromMetafile(raw string, inputs map[string]string, workDir, outDir string) ([]manifest.Output, error) {
	var meta metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("parse metafile: %w", err)
	}

	outputs := make([]manifest.Output, 0, len(meta.Outputs))
	for path, o := range meta.Outputs {
		rel, err := filepath.Rel(outDir, filepath.Join(workDir, filepath.FromSlash(path)))
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, manifest.Output{
			Entry: inputs[o.EntryPoint],
			Path:  filepath.ToSlash(rel),
		})
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Path < outputs[j].Path })
	return outputs, nil
}

// formatMessages renders bundler diagnostics as "file:line:col: text".
func formatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location == nil {
			out = append(out, m.Text)
			continue
		}
		out = append(out, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
	}
	return out
}

func messagesError(msgs []api.Message) error {
	lines := formatMessages(msgs)
	if len(lines) == 0 {
		return errors.New("bundler failed")
	}
	return errors.New(strings.Join(lines, "\n"))
}
