package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docserve/internal/config"
	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/docs"
	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/stats"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"guide/install.md": {Data: []byte("# Install\n\nSee [usage](/guide/usage).\n\nPrevious: nothing\n")},
		"guide/usage.md":   {Data: []byte("# Usage\n\nRun the thing.\n")},
		"empty":            {Mode: fs.ModeDir | 0o755},
		"readme.md":        {Data: []byte("top level thing\n")},
	}
}

func newTestServer(t *testing.T, fsys fs.FS, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Defaults()
	cfg.SearchRate = 0
	if mutate != nil {
		mutate(&cfg)
	}
	c := corpus.New(fsys, nil)
	svc := docs.NewService(c, render.NewRenderer(render.NewChroma(), nil), search.NewScanner(c, nil), stats.NewWindow(time.Hour), nil)
	srv, err := NewServer(svc, discardLogger(), cfg)
	require.NoError(t, err)
	return srv
}

func do(srv http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func TestNavigation(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)

	rr := do(srv, http.MethodGet, "/api/navigation", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Empty(t, rr.Header().Get("X-Nav-Warnings"))

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw, 3)
	assert.Equal(t, "empty", raw[0]["name"])
	assert.Equal(t, "directory", raw[0]["type"])
	assert.Equal(t, []any{}, raw[0]["children"])
	assert.Equal(t, "guide", raw[1]["name"])
	assert.Equal(t, "readme", raw[2]["path"])
	assert.NotContains(t, raw[2], "children")
}

type brokenFS struct{}

func (brokenFS) Open(string) (fs.File, error) { return nil, errors.New("disk on fire") }

func TestNavigation_ReadFailure(t *testing.T) {
	srv := newTestServer(t, brokenFS{}, nil)

	rr := do(srv, http.MethodGet, "/api/navigation", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Error getting navigation"}`, rr.Body.String())
}

func TestContent(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)

	rr := do(srv, http.MethodGet, "/api/content/guide/install", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var doc doctree.Document
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Equal(t, "Install", doc.Title)
	assert.Equal(t, "guide/install", doc.Path)
	assert.Contains(t, doc.Content, `href="/guide/usage"`, "API content is not post-processed")

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rr = do(srv, http.MethodGet, "/api/content/guide/install", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestContent_NotFound(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)

	for _, p := range []string{"/api/content/guide/missing", "/api/content/guide", "/api/content/..%2f..%2fetc%2fpasswd"} {
		rr := do(srv, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, p)
		assert.JSONEq(t, `{"error":"File not found"}`, rr.Body.String(), p)
	}
}

func TestSearch(t *testing.T) {
	fsys := testFS()
	var b strings.Builder
	for i := range 40 {
		fmt.Fprintf(&b, "thing %d\n", i)
	}
	fsys["zz.md"] = &fstest.MapFile{Data: []byte(b.String())}
	srv := newTestServer(t, fsys, nil)

	rr := do(srv, http.MethodGet, "/api/search?q=THING", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var hits []doctree.Hit
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &hits))
	require.Len(t, hits, search.APILimit)
	assert.Equal(t, doctree.Hit{File: "guide/install", Line: 5, Content: "Previous: nothing", Title: "Install"}, hits[0])
	assert.Equal(t, doctree.Hit{File: "guide/usage", Line: 3, Content: "Run the thing.", Title: "Usage"}, hits[1])
	assert.Equal(t, doctree.Hit{File: "readme", Line: 1, Content: "top level thing", Title: "readme"}, hits[2])
	assert.Equal(t, "zz", hits[3].File)

	for _, q := range []string{"", "?q=", "?q=t"} {
		rr = do(srv, http.MethodGet, "/api/search"+q, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	}
}

func TestSearch_RateLimited(t *testing.T) {
	srv := newTestServer(t, testFS(), func(c *config.Config) {
		c.SearchRate = 0.001
		c.SearchBurst = 1
	})

	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/api/search?q=thing", nil).Code)
	rr := do(srv, http.MethodGet, "/api/search?q=thing", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, do(srv, http.MethodGet, "/api/navigation", nil).Code)
}

func TestSearchStats(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)
	do(srv, http.MethodGet, "/api/search?q=thing", nil)

	rr := do(srv, http.MethodGet, "/api/stats/search", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Backend string `json:"backend"`
		Stats   struct {
			Count int `json:"count"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "scan", body.Backend)
	assert.Equal(t, 1, body.Stats.Count)
}

type brokenSearcher struct{}

func (brokenSearcher) Search(context.Context, string, int) ([]doctree.Hit, error) {
	return nil, errors.New("index unavailable")
}

func TestSearchFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	cfg := config.Defaults()
	cfg.SearchRate = 0
	c := corpus.New(testFS(), nil)
	svc := docs.NewService(c, render.NewRenderer(render.NewChroma(), nil), brokenSearcher{}, stats.NewWindow(time.Hour), log)
	srv, err := NewServer(svc, log, cfg)
	require.NoError(t, err)

	rr := do(srv, http.MethodGet, "/api/search?q=thing", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Search error"}`, rr.Body.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "index unavailable"), buf.String())
}

func TestHealthAndHeaders(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)

	rr := do(srv, http.MethodGet, "/health", http.Header{"Origin": {"https://elsewhere.example"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rr.Header().Get("X-Frame-Options"))
	assert.Empty(t, rr.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)

	rr := do(srv, http.MethodOptions, "/api/search", http.Header{
		"Origin":                        {"https://elsewhere.example"},
		"Access-Control-Request-Method": {"GET"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)
	do(srv, http.MethodGet, "/api/navigation", nil)

	rr := do(srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "docserve_http_requests_total")

	off := newTestServer(t, testFS(), func(c *config.Config) { c.Metrics = false })
	assert.Equal(t, "text/html; charset=utf-8", do(off, http.MethodGet, "/metrics", nil).Header().Get("Content-Type"))
}

func TestSPA(t *testing.T) {
	srv := newTestServer(t, testFS(), nil)

	for _, p := range []string{"/", "/guide/install", "/anything/else"} {
		rr := do(srv, http.MethodGet, p, nil)
		require.Equal(t, http.StatusOK, rr.Code, p)
		assert.Contains(t, rr.Body.String(), `<script src="/static/app.js">`, p)
	}

	rr := do(srv, http.MethodGet, "/static/app.js", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "navigateToDoc")

	rr = do(srv, http.MethodGet, "/static/chroma-dark.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/css; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), ".chroma")
}

func TestSSR(t *testing.T) {
	srv := newTestServer(t, testFS(), func(c *config.Config) { c.Mode = config.ModeSSR })

	rr := do(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `href="/guide/install" data-category="guide"`)

	rr = do(srv, http.MethodGet, "/guide/install", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<a href="/guide/usage">usage</a>`)
	assert.Contains(t, body, "Next: usage →")
	assert.NotContains(t, body, "Previous: nothing")
	assert.Contains(t, body, `<span>install</span>`)

	rr = do(srv, http.MethodGet, "/guide", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="category-list"`)

	rr = do(srv, http.MethodGet, "/search?q=thing", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "guide/usage (line 3)")

	rr = do(srv, http.MethodGet, "/search?q=x", nil)
	assert.Contains(t, rr.Body.String(), "at least two characters")

	rr = do(srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page not found")

	rr = do(srv, http.MethodGet, "/api/content/guide/usage", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "API stays available in SSR mode")
}
