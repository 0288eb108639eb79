// Package search finds corpus lines containing a query, in navigation order.
package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docserve/internal/doctree"
)

const (
	// APILimit caps hits returned by the JSON API.
	APILimit = 20
	// PageLimit caps hits on the rendered search page.
	PageLimit = 50
	// MinQueryLen is the shortest query, in characters after trimming, that
	// is searched.
	MinQueryLen = 2
)

// Searcher returns hits for a query, in discovery order, cut to limit.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]doctree.Hit, error)
}

// Normalize trims the query and reports whether it is long enough to search.
func Normalize(query string) (string, bool) {
	q := strings.TrimSpace(query)
	return q, utf8.RuneCountInString(q) >= MinQueryLen
}

// matchLines appends a hit for every line of src containing needle, which
// must already be lower-cased.
func matchLines(hits []doctree.Hit, src []byte, needle, file, title string, limit int) []doctree.Hit {
	for i, line := range strings.Split(string(src), "\n") {
		if len(hits) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(line), needle) {
			hits = append(hits, doctree.Hit{
				File:    file,
				Line:    i + 1,
				Content: strings.TrimSpace(line),
				Title:   title,
			})
		}
	}
	return hits
}
