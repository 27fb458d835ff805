// Package bundle defines the declarative bundler configuration: entry points,
// output name templates, loaders, and the per-mode profiles merged on top.
// The bundler itself is an external dependency; this package only describes
// what to hand it.
package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader kinds understood by the bundler adapter.
const (
	LoaderJS   = "js"
	LoaderCSS  = "css"
	LoaderFile = "file"
	LoaderCopy = "copy"
)

// Sourcemap modes.
const (
	SourcemapNone     = "none"
	SourcemapLinked   = "linked"
	SourcemapExternal = "external"
	SourcemapInline   = "inline"
)

// Modes with a built-in meaning.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Targets accepted by Validate, lowest to highest.
var Targets = []string{"es2015", "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022", "esnext"}

// Output holds the name templates for emitted files. Templates are relative
// to the output directory and take the bundler's placeholders
// ([name], [hash], [dir]); the extension is appended by the bundler.
type Output struct {
	Scripts string `yaml:"scripts,omitempty"`
	Styles  string `yaml:"styles,omitempty"`
	Chunks  string `yaml:"chunks,omitempty"`
	Assets  string `yaml:"assets,omitempty"`
}

// Config is one bundle configuration. Boolean switches are pointers so a
// profile can turn off something the base turned on.
type Config struct {
	Entries      map[string][]string `yaml:"entries,omitempty"`
	AssetContext string              `yaml:"asset_context,omitempty"`
	Output       Output              `yaml:"output,omitempty"`
	Loaders      map[string]string   `yaml:"loaders,omitempty"`
	Target       string              `yaml:"target,omitempty"`
	Sourcemap    string              `yaml:"sourcemap,omitempty"`

	Minify    *bool `yaml:"minify,omitempty"`
	Splitting *bool `yaml:"splitting,omitempty"`
	Manifest  *bool `yaml:"manifest,omitempty"`
	Symlink   *bool `yaml:"symlink,omitempty"`
	Clean     *bool `yaml:"clean,omitempty"`

	Profiles map[string]Config `yaml:"profiles,omitempty"`
}

// Parse decodes a YAML bundle configuration. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a bundle configuration from disk.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read bundle config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFS reads a bundle configuration from an embedded filesystem.
func LoadFS(fsys fs.FS, name string) (Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", name, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return cfg, nil
}

// Resolve merges the named profile onto the base. An empty mode yields the
// base alone. The returned config carries no profiles.
func (c Config) Resolve(mode string) (Config, error) {
	base := c
	base.Profiles = nil
	if mode == "" {
		return base, nil
	}
	profile, ok := c.Profiles[mode]
	if !ok {
		return Config{}, fmt.Errorf("unknown mode %q (have: %s)", mode, strings.Join(c.ProfileNames(), ", "))
	}
	profile.Profiles = nil
	return Merge(base, profile), nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntryNames returns the entry names in sorted order.
func (c Config) EntryNames() []string {
	names := make([]string, 0, len(c.Entries))
	for name := range c.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoaderFor returns the loader kind registered for ext (with leading dot).
func (c Config) LoaderFor(ext string) string {
	return c.Loaders[strings.ToLower(ext)]
}

func (c Config) MinifyEnabled() bool    { return on(c.Minify) }
func (c Config) SplittingEnabled() bool { return on(c.Splitting) }
func (c Config) ManifestEnabled() bool  { return on(c.Manifest) }
func (c Config) SymlinkEnabled() bool   { return on(c.Symlink) }
func (c Config) CleanEnabled() bool     { return on(c.Clean) }

func on(b *bool) bool { return b != nil && *b }

// Bool returns a pointer to b, for building configs in code.
func Bool(b bool) *bool { return &b }

// Validate checks a resolved configuration.
func (c Config) Validate() error {
	if len(c.Entries) == 0 {
		return fmt.Errorf("no entries configured")
	}
	for _, name := range c.EntryNames() {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("entry %q: name must be a plain file name", name)
		}
		if len(c.Entries[name]) == 0 {
			return fmt.Errorf("entry %q: no sources", name)
		}
		for _, src := range c.Entries[name] {
			if c.LoaderFor(extOf(src)) == "" {
				return fmt.Errorf("entry %q: no loader for %s", name, src)
			}
		}
	}

	templates := []struct{ field, tmpl string }{
		{"output.scripts", c.Output.Scripts},
		{"output.styles", c.Output.Styles},
		{"output.chunks", c.Output.Chunks},
	}
	for _, t := range templates {
		if !strings.Contains(t.tmpl, "[name]") {
			return fmt.Errorf("%s: template %q must contain [name]", t.field, t.tmpl)
		}
	}
	if c.Output.Assets == "" {
		return fmt.Errorf("output.assets: template is empty")
	}

	for ext, kind := range c.Loaders {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("loader %q: extension must start with a dot", ext)
		}
		switch kind {
		case LoaderJS, LoaderCSS, LoaderFile, LoaderCopy:
		default:
			return fmt.Errorf("loader %q: unknown kind %q", ext, kind)
		}
	}

	switch c.Sourcemap {
	case "", SourcemapNone, SourcemapLinked, SourcemapExternal, SourcemapInline:
	default:
		return fmt.Errorf("unknown sourcemap mode %q", c.Sourcemap)
	}

	if c.Target != "" && !knownTarget(c.Target) {
		return fmt.Errorf("unknown target %q", c.Target)
	}
	return nil
}

func knownTarget(t string) bool {
	for _, known := range Targets {
		if t == known {
			return true
		}
	}
	return false
}

func extOf(p string) string {
	i := strings.LastIndexByte(p, '.')
	if i < 0 || strings.ContainsAny(p[i:], `/\`) {
		return ""
	}
	return strings.ToLower(p[i:])
}
