// Package configs embeds the default bundle configuration.
// This is a standalone package with no imports to avoid circular dependencies.
//
// Usage:
//
//	bundle.LoadFS(configs.FS, configs.Default)
package configs

import "embed"

// Default is the name of the built-in bundle configuration inside FS.
const Default = "bundle.yaml"

//go:embed bundle.yaml
var FS embed.FS
