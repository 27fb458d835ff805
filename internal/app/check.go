package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/corey/bundlekit/internal/adapters/htmlscan"
	"github.com/corey/bundlekit/internal/domain/manifest"
	"go.uber.org/zap"
)

// Problem kinds reported by CheckReferences.
const (
	ProblemStale   = "stale"   // reference still uses a logical (un-hashed) name
	ProblemMissing = "missing" // referenced file does not exist under the public dir
)

// Problem is one suspicious asset reference.
type Problem struct {
	File string // HTML file, relative to the public dir
	URL  string
	Kind string
	Want string // hashed name, for stale references
}

// CheckReferences scans every HTML file under publicDir for script and link
// references. Root-relative references are reported when they still use a
// manifest key or when the file they name does not exist. m may be nil.
func CheckReferences(log *zap.Logger, publicDir string, m manifest.Manifest) ([]Problem, int, error) {
	files, err := FindHTMLFiles(publicDir)
	if err != nil {
		return nil, 0, fmt.Errorf("find html files: %w", err)
	}

	var problems []Problem
	for _, file := range files {
		refs, err := scanFile(file)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", file, err)
		}
		rel, _ := filepath.Rel(publicDir, file)
		log.Debug("scanned", zap.String("file", rel), zap.Int("refs", len(refs)))

		for _, ref := range refs {
			local, ok := htmlscan.LocalPath(ref.URL)
			if !ok {
				continue
			}
			if hashed, ok := m[local]; ok {
				problems = append(problems, Problem{File: rel, URL: ref.URL, Kind: ProblemStale, Want: "/" + hashed})
				continue
			}
			if _, err := os.Stat(filepath.Join(publicDir, filepath.FromSlash(local))); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					return nil, 0, err
				}
				problems = append(problems, Problem{File: rel, URL: ref.URL, Kind: ProblemMissing})
			}
		}
	}
	return problems, len(files), nil
}

func scanFile(path string) ([]htmlscan.Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return htmlscan.Scan(f)
}
