// bundlekit drives an external bundler from declarative config and rewrites
// HTML files to point at content-hashed asset names.
package main

import (
	"os"

	"github.com/corey/bundlekit/cmd/bundlekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
