package bundle

// Merge overlays override onto base and returns the result. Non-empty
// scalars and non-nil switches in override win; loader maps merge key-wise;
// entry source lists append, skipping sources already present.
// Neither argument is modified.
func Merge(base, override Config) Config {
	out := base

	out.Entries = make(map[string][]string, len(base.Entries)+len(override.Entries))
	for name, srcs := range base.Entries {
		out.Entries[name] = append([]string(nil), srcs...)
	}
	for name, srcs := range override.Entries {
		out.Entries[name] = appendUnique(out.Entries[name], srcs)
	}

	out.Loaders = make(map[string]string, len(base.Loaders)+len(override.Loaders))
	for ext, kind := range base.Loaders {
		out.Loaders[ext] = kind
	}
	for ext, kind := range override.Loaders {
		out.Loaders[ext] = kind
	}

	out.AssetContext = pick(base.AssetContext, override.AssetContext)
	out.Target = pick(base.Target, override.Target)
	out.Sourcemap = pick(base.Sourcemap, override.Sourcemap)
	out.Output = Output{
		Scripts: pick(base.Output.Scripts, override.Output.Scripts),
		Styles:  pick(base.Output.Styles, override.Output.Styles),
		Chunks:  pick(base.Output.Chunks, override.Output.Chunks),
		Assets:  pick(base.Output.Assets, override.Output.Assets),
	}

	out.Minify = pickBool(base.Minify, override.Minify)
	out.Splitting = pickBool(base.Splitting, override.Splitting)
	out.Manifest = pickBool(base.Manifest, override.Manifest)
	out.Symlink = pickBool(base.Symlink, override.Symlink)
	out.Clean = pickBool(base.Clean, override.Clean)

	if len(base.Profiles) > 0 || len(override.Profiles) > 0 {
		out.Profiles = make(map[string]Config, len(base.Profiles)+len(override.Profiles))
		for name, p := range base.Profiles {
			out.Profiles[name] = p
		}
		for name, p := range override.Profiles {
			if prev, ok := out.Profiles[name]; ok {
				p = Merge(prev, p)
			}
			out.Profiles[name] = p
		}
	}
	return out
}

func pick(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func pickBool(base, override *bool) *bool {
	if override != nil {
		v := *override
		return &v
	}
	if base != nil {
		v := *base
		return &v
	}
	return nil
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
