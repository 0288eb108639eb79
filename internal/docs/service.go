// Package docs answers navigation, document and search requests against one
// corpus. It is shared by the HTTP server, the CLI and the terminal browser.
package docs

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/metrics"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/stats"
)

// Service is safe for concurrent use.
type Service struct {
	corpus   *corpus.Corpus
	renderer *render.Renderer
	searcher search.Searcher
	stats    *stats.Window
	log      *slog.Logger
}

func NewService(c *corpus.Corpus, r *render.Renderer, s search.Searcher, st *stats.Window, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if st == nil {
		st = stats.NewWindow(time.Hour)
	}
	return &Service{corpus: c, renderer: r, searcher: s, stats: st, log: log}
}

// Tree lists the corpus, including any subtrees that could not be read.
func (s *Service) Tree(ctx context.Context) (*corpus.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.corpus.Tree()
}

// Navigation returns the navigation forest.
func (s *Service) Navigation(ctx context.Context) (doctree.Forest, error) {
	t, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return t.Nodes, nil
}

// Document reads and renders the document at docPath. The content is the raw
// rendered HTML; link rewriting is left to the presentation layer.
func (s *Service) Document(ctx context.Context, docPath string) (*doctree.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docPath = strings.Trim(docPath, "/")

	src, err := s.corpus.Source(docPath)
	if err != nil {
		if errors.Is(err, doctree.ErrNotFound) {
			metrics.DocumentsServedTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.DocumentsServedTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	html, err := s.renderer.Render(src)
	if err != nil {
		metrics.RenderFailuresTotal.Inc()
		metrics.DocumentsServedTotal.WithLabelValues("error").Inc()
		s.log.Error("render failed", "path", docPath, "error", err)
		return nil, err
	}

	metrics.DocumentsServedTotal.WithLabelValues("ok").Inc()
	return &doctree.Document{
		Title:   corpus.TitleFromSource(src, path.Base(docPath)),
		Content: html,
		Path:    docPath,
	}, nil
}

// Search returns at most search.APILimit hits.
func (s *Service) Search(ctx context.Context, query string) ([]doctree.Hit, error) {
	return s.search(ctx, query, search.APILimit, "api")
}

// SearchPage returns at most search.PageLimit hits, for the rendered results page.
func (s *Service) SearchPage(ctx context.Context, query string) ([]doctree.Hit, error) {
	return s.search(ctx, query, search.PageLimit, "page")
}

func (s *Service) search(ctx context.Context, query string, limit int, surface string) ([]doctree.Hit, error) {
	if _, ok := search.Normalize(query); !ok {
		return []doctree.Hit{}, nil
	}
	start := time.Now()
	hits, err := s.searcher.Search(ctx, query, limit)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Error("search failed", "query", query, "error", err)
		return nil, err
	}
	metrics.SearchDuration.WithLabelValues(surface).Observe(elapsed.Seconds())
	metrics.SearchHits.Observe(float64(len(hits)))
	s.stats.Record(elapsed, len(hits))
	return hits, nil
}

// Categories lists top-level directory names.
func (s *Service) Categories() ([]string, error) {
	return s.corpus.Categories()
}

// SearchStats summarises recent search latency.
func (s *Service) SearchStats() stats.Snapshot {
	return s.stats.Snapshot()
}
