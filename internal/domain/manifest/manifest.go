// Package manifest holds the mapping from logical asset names to their
// content-hashed counterparts, as produced by a production build.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned by Load when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// Manifest maps a logical (non-hashed) asset name to its hashed name.
type Manifest map[string]string

// Output is a single file emitted by the bundler.
// Entry is the logical entry name (e.g. "application"); Path is the emitted
// file relative to the output directory, slash-separated.
type Output struct {
	Entry string
	Path  string
}

// Load reads a JSON manifest from path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m == nil {
		m = Manifest{}
	}
	for k := range m {
		if k == "" {
			return nil, fmt.Errorf("parse manifest %s: empty key", path)
		}
	}
	return m, nil
}

// Save writes m to path as indented JSON. encoding/json sorts map keys, so
// the output is stable across builds.
func Save(path string, m Manifest) error {
	if m == nil {
		m = Manifest{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Keys returns the logical names in sorted order.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromOutputs builds a manifest from bundler outputs. Only scripts and
// styles are recorded; source maps and file-loader assets keep their names.
//
//	application + scripts/application-4F2KQ7XZ.min.js
//	  → "assets/scripts/application.min.js": "assets/scripts/application-4F2KQ7XZ.min.js"
func FromOutputs(outputDir string, outputs []Output) Manifest {
	m := make(Manifest, len(outputs))
	for _, o := range outputs {
		if o.Entry == "" {
			continue
		}
		var logical string
		switch path.Ext(o.Path) {
		case ".js":
			logical = path.Join(outputDir, "scripts", o.Entry+".min.js")
		case ".css":
			logical = path.Join(outputDir, "styles", o.Entry+".min.css")
		default:
			continue
		}
		m[logical] = path.Join(outputDir, strings.TrimPrefix(o.Path, "/"))
	}
	return m
}
