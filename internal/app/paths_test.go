package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("public", "assets", filepath.Join("public", "assets", "manifest.json"))
	assert.Equal(t, "public", p.PublicDir)
	assert.Equal(t, filepath.Join("public", "assets"), p.OutputDir)
	assert.Equal(t, filepath.Join("public", "assets", "manifest.json"), p.Manifest)
	assert.Equal(t, "/assets/", p.PublicPath)
	assert.Equal(t, "assets", p.OutputRel)
	assert.Equal(t, filepath.Join("public", "assets", "scripts", "app.js"), p.InPublic("assets/scripts/app.js"))
}

func TestNewPaths_NestedAndEmptyOutput(t *testing.T) {
	p := NewPaths("www", "static/build", "m.json")
	assert.Equal(t, filepath.Join("www", "static", "build"), p.OutputDir)
	assert.Equal(t, "/static/build/", p.PublicPath)

	p = NewPaths("www", "", "m.json")
	assert.Equal(t, "www", p.OutputDir)
	assert.Equal(t, "/", p.PublicPath)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(filepath.Join(dir, "public"), "assets", "")

	require.NoError(t, p.EnsureDirs())
	info, err := os.Stat(p.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is idempotent.
	require.NoError(t, p.EnsureDirs())
}

func TestCleanOutput(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(filepath.Join(dir, "public"), "assets", "")
	require.NoError(t, p.EnsureDirs())

	stale := filepath.Join(p.OutputDir, "scripts", "old-1234.min.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	keep := filepath.Join(p.PublicDir, "index.html")
	require.NoError(t, os.WriteFile(keep, []byte("<html>"), 0644))

	require.NoError(t, p.CleanOutput())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(p.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, keep)
}
