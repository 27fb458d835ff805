// Package htmlscan extracts asset references from HTML documents using
// golang.org/x/net/html. It only reads; documents are never re-rendered.
package htmlscan

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Ref is one asset reference found in a document.
type Ref struct {
	Tag  string // script | link
	Attr string // src | href
	URL  string
}

// Scan tokenizes r and returns every script[src] and link[href] reference,
// in document order.
func Scan(r io.Reader) ([]Ref, error) {
	z := html.NewTokenizer(r)
	var refs []Ref
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return refs, nil
			}
			return refs, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			var want string
			switch tok.Data {
			case "script":
				want = "src"
			case "link":
				want = "href"
			default:
				continue
			}
			for _, a := range tok.Attr {
				if a.Namespace == "" && a.Key == want && strings.TrimSpace(a.Val) != "" {
					refs = append(refs, Ref{Tag: tok.Data, Attr: want, URL: strings.TrimSpace(a.Val)})
				}
			}
		}
	}
}

// LocalPath returns the slash-separated path of a root-relative URL with its
// query and fragment stripped, relative to the site root. ok is false for
// absolute, protocol-relative, data and page-relative URLs.
func LocalPath(url string) (string, bool) {
	if !strings.HasPrefix(url, "/") || strings.HasPrefix(url, "//") {
		return "", false
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	p := strings.TrimPrefix(url, "/")
	if p == "" {
		return "", false
	}
	return p, true
}
