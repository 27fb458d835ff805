package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/corey/bundlekit/internal/domain/bundle"
	"github.com/corey/bundlekit/internal/domain/manifest"
	"github.com/corey/bundlekit/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBundler writes each output as an empty file and records the request.
type fakeBundler struct {
	outputs []manifest.Output
	err     error
	got     ports.BuildRequest
}

func (f *fakeBundler) Build(_ context.Context, req ports.BuildRequest) (*ports.BuildOutput, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.outputs {
		path := filepath.Join(req.OutputDir, filepath.FromSlash(o.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte("/* "+o.Entry+" */"), 0644); err != nil {
			return nil, err
		}
	}
	return &ports.BuildOutput{Outputs: f.outputs, Warnings: []string{"unused import"}}, nil
}

func (f *fakeBundler) Serve(ctx context.Context, req ports.BuildRequest, servedir, host string, port int, onReady func(string)) error {
	f.got = req
	onReady(host)
	<-ctx.Done()
	return nil
}

func testConfig() bundle.Config {
	return bundle.Config{
		Entries: map[string][]string{"application": {"resources/scripts/application.js"}},
		Loaders: map[string]string{".js": bundle.LoaderJS},
		Output: bundle.Output{
			Scripts: "scripts/[name]-[hash].min",
			Styles:  "styles/[name]-[hash].min",
			Chunks:  "scripts/[name]-[hash].min",
			Assets:  "[dir]/[name]",
		},
		Manifest: bundle.Bool(true),
		Symlink:  bundle.Bool(true),
		Clean:    bundle.Bool(true),
	}
}

func testSettings(dir string) *Settings {
	public := filepath.Join(dir, "public")
	return &Settings{
		PublicDir: public,
		OutputDir: "assets",
		Manifest:  filepath.Join(public, "assets", "manifest.json"),
		Mode:      bundle.ModeProduction,
		FileVars:  map[string]string{"API_URL": "https://example.com"},
	}
}

func TestBuild_Production(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	s := testSettings(dir)
	stale := filepath.Join(s.PublicDir, "assets", "scripts", "application-OLD.min.js")
	writeFile(t, stale, "old")

	fb := &fakeBundler{outputs: []manifest.Output{
		{Entry: "application", Path: "scripts/application-4F2KQ7XZ.min.js"},
		{Entry: "application", Path: "styles/application-PL3B6MNA.min.css"},
	}}

	report, err := Build(context.Background(), zap.NewNop(), fb, s, testConfig())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.PublicDir, "assets"), fb.got.OutputDir)
	assert.Equal(t, "/assets/", fb.got.PublicPath)
	assert.Equal(t, `"https://example.com"`, fb.got.Define["process.env.API_URL"])

	assert.Equal(t, 2, report.Outputs)
	assert.Equal(t, []string{"unused import"}, report.Warnings)
	assert.Equal(t, 2, report.Symlinks)

	want := manifest.Manifest{
		"assets/scripts/application.min.js": "assets/scripts/application-4F2KQ7XZ.min.js",
		"assets/styles/application.min.css": "assets/styles/application-PL3B6MNA.min.css",
	}
	assert.Equal(t, want, report.Manifest)
	onDisk, err := manifest.Load(s.Manifest)
	require.NoError(t, err)
	assert.Equal(t, want, onDisk)

	// Clean removed the stale hashed file.
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	link := filepath.Join(s.PublicDir, "assets", "scripts", "application.min.js")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "application-4F2KQ7XZ.min.js", target)
	assert.Equal(t, "/* application */", readFile(t, link))
}

func TestBuild_NoManifest(t *testing.T) {
	dir := t.TempDir()
	s := testSettings(dir)
	cfg := testConfig()
	cfg.Manifest = bundle.Bool(false)

	fb := &fakeBundler{outputs: []manifest.Output{{Entry: "application", Path: "scripts/application.min.js"}}}
	report, err := Build(context.Background(), zap.NewNop(), fb, s, cfg)
	require.NoError(t, err)
	assert.Nil(t, report.Manifest)
	assert.Zero(t, report.Symlinks)
	_, err = os.Stat(s.Manifest)
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_InvalidConfig(t *testing.T) {
	fb := &fakeBundler{}
	_, err := Build(context.Background(), zap.NewNop(), fb, testSettings(t.TempDir()), bundle.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bundle config")
}

func TestBuild_BundlerError(t *testing.T) {
	fb := &fakeBundler{err: errors.New("could not resolve \"./missing\"")}
	_, err := Build(context.Background(), zap.NewNop(), fb, testSettings(t.TempDir()), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bundle: could not resolve")
}

func TestSymlinkHashedAssets_ReplacesLinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	p := NewPaths(dir, "assets", "")
	writeFile(t, p.InPublic("assets/scripts/app-NEW.min.js"), "new")
	link := p.InPublic("assets/scripts/app.min.js")
	require.NoError(t, os.Symlink("app-OLD.min.js", link))

	n, err := SymlinkHashedAssets(p, manifest.Manifest{"assets/scripts/app.min.js": "assets/scripts/app-NEW.min.js"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "app-NEW.min.js", target)
}

func TestSymlinkHashedAssets_RefusesRegularFile(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(dir, "assets", "")
	writeFile(t, p.InPublic("assets/scripts/app.min.js"), "hand-written")

	_, err := SymlinkHashedAssets(p, manifest.Manifest{"assets/scripts/app.min.js": "assets/scripts/app-NEW.min.js"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a symlink")
	assert.Equal(t, "hand-written", readFile(t, p.InPublic("assets/scripts/app.min.js")))
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	s := testSettings(dir)
	fb := &fakeBundler{}

	ctx, cancel := context.WithCancel(context.Background())
	var addr string
	err := Serve(ctx, zap.NewNop(), fb, s, testConfig(), "127.0.0.1", 8000, func(a string) {
		addr = a
		cancel()
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", addr)
	assert.Equal(t, "/assets/", fb.got.PublicPath)
	assert.DirExists(t, filepath.Join(s.PublicDir, "assets"))
}
