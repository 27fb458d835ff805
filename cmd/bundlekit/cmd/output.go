package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/bundlekit/internal/app"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorGray    = "\033[90m"
)

// formatHashResult formats a hash run for terminal display.
//
//	⚡ hashed 2 of 5 HTML files │ 3 replacements
//	  public/index.html
func formatHashResult(r *app.HashResult, dryRun bool) string {
	var sb strings.Builder
	verb := "hashed"
	if dryRun {
		verb = "would hash"
	}
	sb.WriteString(fmt.Sprintf("%s⚡ %s %d of %d HTML files%s │ %d replacements\n",
		colorBold, verb, r.Changed, r.Files, colorReset, r.Replacements))
	for _, p := range r.ChangedPaths {
		sb.WriteString(fmt.Sprintf("  %s%s%s\n", colorCyan, p, colorReset))
	}
	return sb.String()
}

// formatBuildReport formats a build for terminal display.
func formatBuildReport(r *app.BuildReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s build%s │ %d files",
		colorBold, r.Mode, colorReset, r.Outputs))
	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf(" │ %s%d warnings%s", colorYellow, len(r.Warnings), colorReset))
	}
	sb.WriteString("\n")

	if r.Manifest != nil {
		for _, k := range r.Manifest.Keys() {
			sb.WriteString(fmt.Sprintf("  %s%s%s → %s%s%s\n",
				colorGray, k, colorReset, colorCyan, r.Manifest[k], colorReset))
		}
	}
	if r.Symlinks > 0 {
		sb.WriteString(fmt.Sprintf("  %d symlinks\n", r.Symlinks))
	}
	return sb.String()
}

// formatProblems formats reference-check findings for terminal display.
func formatProblems(problems []app.Problem, files int) string {
	var sb strings.Builder
	if len(problems) == 0 {
		sb.WriteString(fmt.Sprintf("%s✓ %d HTML files, no problems%s\n", colorGreen, files, colorReset))
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("%s⚡ %d problems%s │ %d HTML files\n", colorBold, len(problems), colorReset, files))
	for _, p := range problems {
		switch p.Kind {
		case app.ProblemStale:
			sb.WriteString(fmt.Sprintf("  %s%s%s: %s%s%s %sstale%s → %s\n",
				colorCyan, p.File, colorReset, colorGray, p.URL, colorReset, colorYellow, colorReset, p.Want))
		default:
			sb.WriteString(fmt.Sprintf("  %s%s%s: %s%s%s %s%s%s\n",
				colorCyan, p.File, colorReset, colorGray, p.URL, colorReset, colorRed, p.Kind, colorReset))
		}
	}
	return sb.String()
}
