package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/corey/bundlekit/internal/adapters/ahocorasick"
	"github.com/corey/bundlekit/internal/domain/manifest"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HashOptions controls a HashAssetFilenames run.
type HashOptions struct {
	// Jobs bounds the number of files rewritten at once. Zero means GOMAXPROCS.
	Jobs int
	// DryRun counts replacements without writing anything.
	DryRun bool
}

// HashResult holds statistics from a HashAssetFilenames run.
type HashResult struct {
	Files        int // HTML files scanned
	Changed      int // files whose content changed
	Replacements int // total key occurrences replaced
	ChangedPaths []string
}

// FindHTMLFiles walks root and returns every *.html file, sorted.
// Symlinked directories are not followed. A missing root has no files.
func FindHTMLFiles(root string) ([]string, error) {
	if _, err := os.Lstat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".html") && d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// HashAssetFilenames rewrites every HTML file under publicDir so that each
// manifest key is replaced by its hashed name. Each file is read, rewritten in
// a single pass and written back in place when its content changed.
// The first I/O error stops the run and is returned.
func HashAssetFilenames(ctx context.Context, log *zap.Logger, publicDir string, m manifest.Manifest, opts HashOptions) (*HashResult, error) {
	files, err := FindHTMLFiles(publicDir)
	if err != nil {
		return nil, fmt.Errorf("find html files: %w", err)
	}

	replacer := ahocorasick.NewReplacer(m)
	log.Debug("hashing asset filenames",
		zap.String("public_dir", publicDir),
		zap.Int("files", len(files)),
		zap.Int("keys", replacer.PatternCount()),
		zap.Bool("dry_run", opts.DryRun))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	changed := make([]bool, len(files))
	var replacements atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, diff, err := rewriteFile(path, replacer, opts.DryRun)
			if err != nil {
				log.Error("rewrite failed", zap.String("file", path), zap.Error(err))
				return fmt.Errorf("rewrite %s: %w", path, err)
			}
			replacements.Add(int64(n))
			if diff {
				changed[i] = true
				log.Debug("rewrote", zap.String("file", path), zap.Int("replacements", n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &HashResult{
		Files:        len(files),
		Replacements: int(replacements.Load()),
	}
	for i, c := range changed {
		if c {
			result.Changed++
			result.ChangedPaths = append(result.ChangedPaths, files[i])
		}
	}
	return result, nil
}

// rewriteFile applies the replacer to one file. It reports the number of
// replacements and whether the content differs. Unchanged files are not
// written; the file mode is preserved.
func rewriteFile(path string, r *ahocorasick.Replacer, dryRun bool) (int, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, err
	}

	out, n := r.Replace(string(data))
	if n == 0 || out == string(data) {
		return n, false, nil
	}
	if dryRun {
		return n, true, nil
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// HashFromManifest loads the manifest at p.Manifest and applies it to the
// public dir. A missing manifest yields an error wrapping manifest.ErrNotFound
// and leaves every file untouched.
func HashFromManifest(ctx context.Context, log *zap.Logger, p *Paths, opts HashOptions) (*HashResult, error) {
	m, err := manifest.Load(p.Manifest)
	if err != nil {
		return nil, err
	}
	return HashAssetFilenames(ctx, log, p.PublicDir, m, opts)
}
