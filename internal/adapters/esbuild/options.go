package esbuild

import (
	"path/filepath"
	"sort"

	"github.com/corey/bundlekit/internal/domain/bundle"
	"github.com/corey/bundlekit/internal/ports"
	"github.com/evanw/esbuild/pkg/api"
)

// pass is one bundler invocation. Scripts and styles are built separately
// so each lands under its own name template.
type pass struct {
	name     string // "scripts" or "styles"
	template string
	entries  []api.EntryPoint
	inputs   map[string]string // input path (slash, cwd-relative) → entry name
}

var loaders = map[string]api.Loader{
	bundle.LoaderJS:   api.LoaderJS,
	bundle.LoaderCSS:  api.LoaderCSS,
	bundle.LoaderFile: api.LoaderFile,
	bundle.LoaderCopy: api.LoaderCopy,
}

var sourcemaps = map[string]api.SourceMap{
	"":                       api.SourceMapNone,
	bundle.SourcemapNone:     api.SourceMapNone,
	bundle.SourcemapLinked:   api.SourceMapLinked,
	bundle.SourcemapExternal: api.SourceMapExternal,
	bundle.SourcemapInline:   api.SourceMapInline,
}

var targets = map[string]api.Target{
	"":       api.DefaultTarget,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// planPasses splits the configured entries into a scripts pass and a styles
// pass by loader kind. Passes with no entries are omitted.
func planPasses(cfg bundle.Config) []pass {
	scripts := pass{name: "scripts", template: cfg.Output.Scripts, inputs: map[string]string{}}
	styles := pass{name: "styles", template: cfg.Output.Styles, inputs: map[string]string{}}

	for _, name := range cfg.EntryNames() {
		for _, src := range cfg.Entries[name] {
			target := &scripts
			if cfg.LoaderFor(filepath.Ext(src)) == bundle.LoaderCSS {
				target = &styles
			}
			target.entries = append(target.entries, api.EntryPoint{InputPath: src, OutputPath: name})
			target.inputs[filepath.ToSlash(filepath.Clean(src))] = name
		}
	}

	var passes []pass
	for _, p := range []pass{scripts, styles} {
		if len(p.entries) > 0 {
			passes = append(passes, p)
		}
	}
	return passes
}

// buildOptions translates one pass of a request into esbuild options.
// workDir and outDir must be absolute.
func buildOptions(req ports.BuildRequest, p pass, workDir, outDir string) api.BuildOptions {
	cfg := req.Config

	loader := make(map[string]api.Loader, len(cfg.Loaders))
	exts := make([]string, 0, len(cfg.Loaders))
	for ext := range cfg.Loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		if l, ok := loaders[cfg.Loaders[ext]]; ok {
			loader[ext] = l
		}
	}

	format := api.FormatIIFE
	if cfg.SplittingEnabled() {
		format = api.FormatESModule
	}

	opts := api.BuildOptions{
		EntryPointsAdvanced: p.entries,
		AbsWorkingDir:       workDir,
		Outdir:              outDir,
		EntryNames:          p.template,
		ChunkNames:          cfg.Output.Chunks,
		AssetNames:          cfg.Output.Assets,
		PublicPath:          req.PublicPath,
		Loader:              loader,
		Define:              req.Define,
		Bundle:              true,
		Write:               true,
		Metafile:            true,
		Platform:            api.PlatformBrowser,
		Format:              format,
		Splitting:           cfg.SplittingEnabled() && p.name == "scripts",
		Target:              targets[cfg.Target],
		Sourcemap:           sourcemaps[cfg.Sourcemap],
		MinifyWhitespace:    cfg.MinifyEnabled(),
		MinifyIdentifiers:   cfg.MinifyEnabled(),
		MinifySyntax:        cfg.MinifyEnabled(),
		LogLevel:            api.LogLevelSilent,
	}
	if cfg.AssetContext != "" {
		opts.Outbase = filepath.Join(workDir, cfg.AssetContext)
	}
	return opts
}
