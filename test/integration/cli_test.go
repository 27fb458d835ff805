package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// bundlekitBin is the path to the compiled binary, set by TestMain.
var bundlekitBin string

func TestMain(m *testing.M) {
	// Build binary once for all tests.
	tmp, err := os.MkdirTemp("", "bundlekit-integration-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	bundlekitBin = filepath.Join(tmp, "bundlekit")
	cmd := exec.Command("go", "build", "-o", bundlekitBin, "./cmd/bundlekit/")
	cmd.Dir = findModuleRoot()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.RemoveAll(tmp)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

// =============================================================================
// Helpers
// =============================================================================

// findModuleRoot walks up from cwd to find go.mod.
func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("go.mod not found")
		}
		dir = parent
	}
}

// setupSite creates a temp dir with a resources/ tree and a public/ site.
func setupSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, ".env"), "BUNDLE_PUBLIC_DIR=public\nBUNDLE_OUTPUT_DIR=assets\nSITE_NAME=demo\n")
	writeFile(t, filepath.Join(dir, "resources", "scripts", "application.js"), `import { mount } from './mount.js'
mount(process.env.SITE_NAME)
`)
	writeFile(t, filepath.Join(dir, "resources", "scripts", "mount.js"), `export function mount(name) {
  document.title = name
}
`)
	writeFile(t, filepath.Join(dir, "resources", "styles", "application.css"), "body { margin: 0 }\n")
	writeFile(t, filepath.Join(dir, "resources", "styles", "vendor.css"), ".btn { padding: 0 }\n")

	page := `<!doctype html>
<html><head>
<link rel="stylesheet" href="/assets/styles/vendor.min.css">
<link rel="stylesheet" href="/assets/styles/application.min.css">
</head><body>
<script src="/assets/scripts/application.min.js"></script>
</body></html>
`
	writeFile(t, filepath.Join(dir, "public", "index.html"), page)
	writeFile(t, filepath.Join(dir, "public", "blog", "first-post", "index.html"), page)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// runBundlekit executes the binary in the given dir with args, returns stdout, stderr, exit code.
func runBundlekit(t *testing.T, dir string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(bundlekitBin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "NODE_ENV=", "BUNDLE_ENV=")

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("exec error (not ExitError): %v", err)
		}
	}
	return
}

// =============================================================================
// Hash
// =============================================================================

func TestHash_NoManifestLeavesFilesAlone(t *testing.T) {
	dir := setupSite(t)
	before := readFile(t, filepath.Join(dir, "public", "index.html"))

	stdout, stderr, exit := runBundlekit(t, dir, "hash")
	if exit != 0 {
		t.Fatalf("exit %d, stderr: %s", exit, stderr)
	}
	if !strings.Contains(stdout, "Manifest not found.") {
		t.Errorf("stdout = %q", stdout)
	}
	if got := readFile(t, filepath.Join(dir, "public", "index.html")); got != before {
		t.Errorf("index.html modified without a manifest:\n%s", got)
	}
}

func TestHash_AppliesManifest(t *testing.T) {
	dir := setupSite(t)
	writeFile(t, filepath.Join(dir, "public", "assets", "manifest.json"),
		`{"assets/scripts/application.min.js": "assets/scripts/application-ABC1234.min.js"}`)

	_, stderr, exit := runBundlekit(t, dir, "hash")
	if exit != 0 {
		t.Fatalf("exit %d, stderr: %s", exit, stderr)
	}
	for _, page := range []string{"index.html", filepath.Join("blog", "first-post", "index.html")} {
		got := readFile(t, filepath.Join(dir, "public", page))
		if !strings.Contains(got, `src="/assets/scripts/application-ABC1234.min.js"`) {
			t.Errorf("%s not rewritten:\n%s", page, got)
		}
		if !strings.Contains(got, `href="/assets/styles/vendor.min.css"`) {
			t.Errorf("%s: unrelated reference changed:\n%s", page, got)
		}
	}
}

// =============================================================================
// Build → hash → check
// =============================================================================

func TestProductionBuild(t *testing.T) {
	dir := setupSite(t)

	stdout, stderr, exit := runBundlekit(t, dir, "build", "--mode", "production")
	if exit != 0 {
		t.Fatalf("build exit %d\nstdout: %s\nstderr: %s", exit, stdout, stderr)
	}

	var m map[string]string
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "public", "assets", "manifest.json"))), &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != 3 {
		t.Fatalf("manifest has %d entries, want 3: %v", len(m), m)
	}

	index := readFile(t, filepath.Join(dir, "public", "index.html"))
	for logical, hashed := range m {
		if strings.Contains(index, `"/`+logical+`"`) {
			t.Errorf("index.html still references %s", logical)
		}
		if !strings.Contains(index, `"/`+hashed+`"`) {
			t.Errorf("index.html missing %s", hashed)
		}
		if _, err := os.Stat(filepath.Join(dir, "public", filepath.FromSlash(logical))); err != nil {
			t.Errorf("logical name %s does not resolve: %v", logical, err)
		}
	}

	js := readFile(t, filepath.Join(dir, "public", filepath.FromSlash(m["assets/scripts/application.min.js"])))
	if !strings.Contains(js, "demo") {
		t.Errorf("SITE_NAME from .env not substituted:\n%s", js)
	}

	stdout, _, exit = runBundlekit(t, dir, "check")
	if exit != 0 {
		t.Errorf("check exit %d after a production build:\n%s", exit, stdout)
	}
}

func TestCheck_ReportsStaleReferences(t *testing.T) {
	dir := setupSite(t)
	writeFile(t, filepath.Join(dir, "public", "assets", "manifest.json"),
		`{"assets/scripts/application.min.js": "assets/scripts/application-ABC1234.min.js"}`)

	stdout, _, exit := runBundlekit(t, dir, "check")
	if exit != 1 {
		t.Fatalf("check exit %d, want 1\n%s", exit, stdout)
	}
	if !strings.Contains(stdout, "stale") || !strings.Contains(stdout, "missing") {
		t.Errorf("expected stale and missing findings:\n%s", stdout)
	}
}

func TestConfig(t *testing.T) {
	dir := setupSite(t)
	stdout, stderr, exit := runBundlekit(t, dir, "config", "--mode", "production")
	if exit != 0 {
		t.Fatalf("exit %d, stderr: %s", exit, stderr)
	}
	for _, want := range []string{"production", "public/assets/manifest.json", "process.env.SITE_NAME"} {
		if !strings.Contains(stdout, filepath.FromSlash(want)) && !strings.Contains(stdout, want) {
			t.Errorf("config output missing %q:\n%s", want, stdout)
		}
	}
}
