package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/corey/bundlekit/internal/domain/bundle"
	"github.com/corey/bundlekit/internal/domain/manifest"
	"github.com/corey/bundlekit/internal/ports"
	"go.uber.org/zap"
)

// BuildReport summarizes a Build run.
type BuildReport struct {
	Mode     string
	Outputs  int
	Warnings []string
	Manifest manifest.Manifest // nil unless the profile writes one
	Symlinks int
}

// Build runs the bundler for a resolved profile, then writes the manifest and
// the logical-name symlinks when the profile asks for them.
func Build(ctx context.Context, log *zap.Logger, b ports.Bundler, s *Settings, cfg bundle.Config) (*BuildReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle config: %w", err)
	}
	p := s.Paths()

	if cfg.CleanEnabled() {
		log.Debug("cleaning output dir", zap.String("dir", p.OutputDir))
		if err := p.CleanOutput(); err != nil {
			return nil, fmt.Errorf("clean output dir: %w", err)
		}
	} else if err := p.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	out, err := b.Build(ctx, ports.BuildRequest{
		Config:     cfg,
		OutputDir:  p.OutputDir,
		PublicPath: p.PublicPath,
		Define:     s.Define(),
	})
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	for _, w := range out.Warnings {
		log.Warn("bundler warning", zap.String("message", w))
	}

	report := &BuildReport{
		Mode:     s.Mode,
		Outputs:  len(out.Outputs),
		Warnings: out.Warnings,
	}
	if !cfg.ManifestEnabled() {
		return report, nil
	}

	m := manifest.FromOutputs(p.OutputRel, out.Outputs)
	if err := manifest.Save(p.Manifest, m); err != nil {
		return nil, err
	}
	report.Manifest = m
	log.Debug("manifest written", zap.String("path", p.Manifest), zap.Int("entries", len(m)))

	if cfg.SymlinkEnabled() {
		n, err := SymlinkHashedAssets(p, m)
		if err != nil {
			return nil, fmt.Errorf("symlink hashed assets: %w", err)
		}
		report.Symlinks = n
	}
	return report, nil
}

// SymlinkHashedAssets creates, inside the public dir, a symlink at each
// logical name pointing at its hashed file, so un-rewritten references keep
// resolving. Link targets are relative to the link's directory. Existing
// links are replaced; an existing regular file is an error.
func SymlinkHashedAssets(p *Paths, m manifest.Manifest) (int, error) {
	count := 0
	for _, logical := range m.Keys() {
		link := p.InPublic(logical)
		target, err := filepath.Rel(filepath.Dir(link), p.InPublic(m[logical]))
		if err != nil {
			return count, err
		}

		if info, err := os.Lstat(link); err == nil {
			if info.Mode()&os.ModeSymlink == 0 {
				return count, fmt.Errorf("%s exists and is not a symlink", link)
			}
			if err := os.Remove(link); err != nil {
				return count, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return count, err
		}

		if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
			return count, err
		}
		if err := os.Symlink(target, link); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Serve runs the bundler in watch mode and serves the public dir until ctx
// is cancelled.
func Serve(ctx context.Context, log *zap.Logger, b ports.Bundler, s *Settings, cfg bundle.Config, host string, port int, onReady func(addr string)) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid bundle config: %w", err)
	}
	p := s.Paths()
	if err := p.EnsureDirs(); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	log.Debug("starting dev server",
		zap.String("servedir", p.PublicDir),
		zap.String("host", host),
		zap.Int("port", port))
	return b.Serve(ctx, ports.BuildRequest{
		Config:     cfg,
		OutputDir:  p.OutputDir,
		PublicPath: p.PublicPath,
		Define:     s.Define(),
	}, p.PublicDir, host, port, onReady)
}
