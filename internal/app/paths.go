package app

import (
	"os"
	"path"
	"path/filepath"
)

// Paths holds the resolved filesystem paths for a build.
// All fields are pre-computed strings.
type Paths struct {
	PublicDir  string // public/
	OutputDir  string // public/assets/
	Manifest   string // public/assets/manifest.json
	PublicPath string // /assets/

	// OutputRel is the output dir relative to PublicDir, slash-separated.
	// Manifest keys and values are expressed relative to PublicDir.
	OutputRel string // assets
}

// NewPaths constructs all resolved paths from the public dir, the output dir
// relative to it, and the manifest location.
func NewPaths(publicDir, outputRel, manifestPath string) *Paths {
	publicPath := path.Join("/", outputRel)
	if publicPath != "/" {
		publicPath += "/"
	}
	return &Paths{
		PublicDir:  publicDir,
		OutputDir:  filepath.Join(publicDir, filepath.FromSlash(outputRel)),
		Manifest:   manifestPath,
		PublicPath: publicPath,
		OutputRel:  outputRel,
	}
}

// EnsureDirs creates the public and output directories. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.PublicDir, p.OutputDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanOutput removes everything under the output directory.
func (p *Paths) CleanOutput() error {
	if err := os.RemoveAll(p.OutputDir); err != nil {
		return err
	}
	return os.MkdirAll(p.OutputDir, 0755)
}

// InPublic resolves a slash-separated path relative to the public dir.
func (p *Paths) InPublic(rel string) string {
	return filepath.Join(p.PublicDir, filepath.FromSlash(rel))
}
