package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docserve/internal/doctree"
)

func TestClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/navigation", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"name":"guide","type":"directory","path":"guide","children":[{"name":"install","type":"file","path":"guide/install"}]}]`))
	})
	mux.HandleFunc("GET /api/content/guide/install", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"title":"Install","content":"<h1>Install</h1>","path":"guide/install"}`))
	})
	mux.HandleFunc("GET /api/content/guide/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"File not found"}`))
	})
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "a b&c" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Search error"}`))
			return
		}
		w.Write([]byte(`[{"file":"guide/install","line":2,"content":"a b&c","title":"Install"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	defer c.Close()
	ctx := context.Background()

	nav, err := c.Navigation(ctx)
	require.NoError(t, err)
	require.Len(t, nav, 1)
	assert.Equal(t, doctree.KindDirectory, nav[0].Kind)
	assert.Equal(t, "guide/install", nav[0].Children[0].Path)

	doc, err := c.Document(ctx, "guide/install")
	require.NoError(t, err)
	assert.Equal(t, "Install", doc.Title)

	_, err = c.Document(ctx, "guide/missing")
	assert.ErrorIs(t, err, doctree.ErrNotFound)

	hits, err := c.Search(ctx, "a b&c")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].Line)

	_, err = c.Search(ctx, "other")
	assert.ErrorIs(t, err, doctree.ErrNetworkFailure)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Navigation(context.Background())
	assert.ErrorIs(t, err, doctree.ErrNetworkFailure)
}
