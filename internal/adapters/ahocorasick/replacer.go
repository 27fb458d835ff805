// Package ahocorasick provides literal multi-pattern replacement using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library so that every manifest key is
// found in one pass over the content, regardless of how many keys there are.
package ahocorasick

import (
	"sort"
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Replacer substitutes each occurrence of a pattern with its replacement.
// Matches are leftmost-longest and non-overlapping, and replacement text is
// never rescanned, so each occurrence is rewritten exactly once.
type Replacer struct {
	automaton    aho.AhoCorasick
	patterns     []string
	replacements []string
}

// NewReplacer compiles a replacer from a pattern → replacement table.
// Empty patterns are ignored.
func NewReplacer(table map[string]string) *Replacer {
	patterns := make([]string, 0, len(table))
	for p := range table {
		if p == "" {
			continue
		}
		patterns = append(patterns, p)
	}
	// Pattern indices must be stable for a given table.
	sort.Strings(patterns)

	r := &Replacer{
		patterns:     patterns,
		replacements: make([]string, len(patterns)),
	}
	for i, p := range patterns {
		r.replacements[i] = table[p]
	}
	if len(patterns) == 0 {
		return r
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		MatchKind: aho.LeftMostLongestMatch,
		DFA:       true,
	})
	r.automaton = builder.Build(patterns)
	return r
}

// Replace returns content with every pattern occurrence replaced, plus the
// number of replacements made. Content is returned unchanged when nothing matches.
func (r *Replacer) Replace(content string) (string, int) {
	if len(r.patterns) == 0 || content == "" {
		return content, 0
	}
	matches := r.automaton.FindAll(content)
	if len(matches) == 0 {
		return content, 0
	}

	var sb strings.Builder
	sb.Grow(len(content))
	last, n := 0, 0
	for _, m := range matches {
		// A key that is a suffix of another can be reported inside a match
		// already applied.
		if m.Start() < last {
			continue
		}
		sb.WriteString(content[last:m.Start()])
		sb.WriteString(r.replacements[m.Pattern()])
		last = m.End()
		n++
	}
	if n == 0 {
		return content, 0
	}
	sb.WriteString(content[last:])
	return sb.String(), n
}

// PatternCount returns the number of compiled patterns.
func (r *Replacer) PatternCount() int {
	return len(r.patterns)
}
