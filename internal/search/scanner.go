package search

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/doctree"
)

var errLimitReached = errors.New("limit reached")

// Scanner re-reads the whole corpus on every query. Nothing is cached, so
// results always reflect the files as they are now.
type Scanner struct {
	corpus *corpus.Corpus
	log    *slog.Logger
}

func NewScanner(c *corpus.Corpus, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scanner{corpus: c, log: log}
}

// Search walks documents in navigation order. Collection stops once limit
// hits are found; the result is the same prefix a full scan would produce.
func (s *Scanner) Search(ctx context.Context, query string, limit int) ([]doctree.Hit, error) {
	q, ok := Normalize(query)
	if !ok || limit <= 0 {
		return []doctree.Hit{}, nil
	}
	needle := strings.ToLower(q)

	hits := []doctree.Hit{}
	err := s.corpus.Walk(func(f corpus.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := fs.ReadFile(s.corpus.FS(), f.Name)
		if err != nil {
			s.log.Warn("skipping unreadable document", "path", f.Name, "error", err)
			return nil
		}
		title := corpus.TitleFromSource(src, f.Path[strings.LastIndex(f.Path, "/")+1:])
		hits = matchLines(hits, src, needle, f.Path, title, limit)
		if len(hits) >= limit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, err
	}
	return hits, nil
}
