package search

import (
	"context"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/metrics"
)

const rebuildKey = "rebuild"

type indexedFile struct {
	path  string
	title string
	src   []byte
}

// Index keeps the corpus text in memory between queries. It is rebuilt
// lazily after Invalidate and returns exactly what Scanner would.
type Index struct {
	corpus *corpus.Corpus
	log    *slog.Logger

	mu    sync.RWMutex
	files []indexedFile
	valid bool
	gen   uint64 // bumped by Invalidate; a rebuild only publishes if unchanged
	group singleflight.Group
}

func NewIndex(c *corpus.Corpus, log *slog.Logger) *Index {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Index{corpus: c, log: log}
}

// Invalidate drops the cached corpus; the next query rebuilds it. A rebuild
// already in flight still answers its own callers but is not kept.
func (x *Index) Invalidate() {
	x.mu.Lock()
	x.gen++
	x.valid = false
	x.files = nil
	x.group.Forget(rebuildKey)
	x.mu.Unlock()
}

// Search matches against the cached corpus, rebuilding it first if needed.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]doctree.Hit, error) {
	q, ok := Normalize(query)
	if !ok || limit <= 0 {
		return []doctree.Hit{}, nil
	}
	files, err := x.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	hits := []doctree.Hit{}
	for _, f := range files {
		hits = matchLines(hits, f.src, needle, f.path, f.title, limit)
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

func (x *Index) snapshot(ctx context.Context) ([]indexedFile, error) {
	x.mu.RLock()
	if x.valid {
		files := x.files
		x.mu.RUnlock()
		return files, nil
	}
	x.mu.RUnlock()

	// The shared rebuild outlives any one caller; each caller only stops
	// waiting when its own context ends.
	ch := x.group.DoChan(rebuildKey, func() (any, error) {
		return x.rebuild()
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]indexedFile), nil
	}
}

func (x *Index) rebuild() ([]indexedFile, error) {
	x.mu.RLock()
	gen := x.gen
	x.mu.RUnlock()

	start := time.Now()
	var files []indexedFile
	err := x.corpus.Walk(func(f corpus.File) error {
		src, err := fs.ReadFile(x.corpus.FS(), f.Name)
		if err != nil {
			x.log.Warn("skipping unreadable document", "path", f.Name, "error", err)
			return nil
		}
		stem := f.Path[strings.LastIndex(f.Path, "/")+1:]
		files = append(files, indexedFile{path: f.Path, title: corpus.TitleFromSource(src, stem), src: src})
		return nil
	})
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	current := gen == x.gen
	if current {
		x.files = files
		x.valid = true
	}
	x.mu.Unlock()
	if !current {
		x.log.Debug("discarding search index built before invalidation", "documents", len(files))
		return files, nil
	}

	metrics.IndexRebuildsTotal.Inc()
	x.log.Info("search index rebuilt", "documents", len(files), "duration", time.Since(start))
	return files, nil
}
