package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvOutputDir = "BUNDLE_OUTPUT_DIR"
	EnvPublicDir = "BUNDLE_PUBLIC_DIR"
	EnvManifest  = "BUNDLE_MANIFEST"
	EnvMode      = "BUNDLE_ENV"
	EnvNodeEnv   = "NODE_ENV"
	EnvConfig    = "BUNDLE_CONFIG"
)

// Names read when the BUNDLE_* key is unset, so existing webpack .env files
// keep working.
const (
	LegacyOutputDir = "WEBPACK_OUTPUT_DIR"
	LegacyPublicDir = "WEBPACK_PUBLIC_DIR"
	LegacyManifest  = "WEBPACK_MANIFEST"
)

// DefaultEnvFile is read when no --env-file is given. Its absence is not an error.
const DefaultEnvFile = ".env"

// Settings is the environment-driven configuration shared by every command.
// Values come from the process environment first, then the env file.
type Settings struct {
	PublicDir  string // public/
	OutputDir  string // assets (relative to PublicDir, slash-separated)
	Manifest   string // public/assets/manifest.json
	Mode       string // development | production
	ConfigFile string // optional bundle YAML

	// FileVars holds the variables read from the env file, exposed to
	// bundled scripts as process.env.KEY.
	FileVars map[string]string
}

// LoadSettings reads envFile (DefaultEnvFile when empty) and the process
// environment. An explicitly named env file must exist.
func LoadSettings(envFile string) (*Settings, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	fileVars, err := godotenv.Read(envFile)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		fileVars = map[string]string{}
	}
	return newSettings(fileVars, os.LookupEnv), nil
}

func newSettings(fileVars map[string]string, lookupEnv func(string) (string, bool)) *Settings {
	get := func(key, def string) string {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v
		}
		if v := fileVars[key]; v != "" {
			return v
		}
		return def
	}

	s := &Settings{
		PublicDir:  filepath.Clean(get(EnvPublicDir, get(LegacyPublicDir, "public"))),
		OutputDir:  strings.Trim(path.Clean(filepath.ToSlash(get(EnvOutputDir, get(LegacyOutputDir, "assets")))), "/"),
		Mode:       get(EnvMode, get(EnvNodeEnv, "development")),
		ConfigFile: get(EnvConfig, ""),
		FileVars:   fileVars,
	}
	if s.OutputDir == "." {
		s.OutputDir = ""
	}
	s.Manifest = get(EnvManifest, get(LegacyManifest, filepath.Join(s.PublicDir, filepath.FromSlash(s.OutputDir), "manifest.json")))
	return s
}

// Paths derives the filesystem layout from the settings.
func (s *Settings) Paths() *Paths {
	return NewPaths(s.PublicDir, s.OutputDir, s.Manifest)
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Define returns the bundler substitutions for env-file variables:
// process.env.KEY → JSON string literal. Keys that are not valid
// identifiers cannot be referenced from scripts and are skipped.
func (s *Settings) Define() map[string]string {
	define := make(map[string]string, len(s.FileVars)+1)
	for k, v := range s.FileVars {
		if !identRe.MatchString(k) {
			continue
		}
		define["process.env."+k] = jsonString(v)
	}
	define["process.env."+EnvNodeEnv] = jsonString(s.Mode)
	return define
}

// DefineKeys returns the Define keys in sorted order.
func (s *Settings) DefineKeys() []string {
	define := s.Define()
	keys := make([]string, 0, len(define))
	for k := range define {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
