package docs_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docserve/internal/corpus"
	"github.com/dgallion1/docserve/internal/docs"
	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/stats"
)

func newService(t *testing.T, fsys fstest.MapFS) *docs.Service {
	t.Helper()
	c := corpus.New(fsys, nil)
	return docs.NewService(c, render.NewRenderer(render.NewChroma(), nil), search.NewScanner(c, nil), stats.NewWindow(time.Hour), nil)
}

func TestService_Document(t *testing.T) {
	t.Parallel()
	svc := newService(t, fstest.MapFS{
		"guide/install.md": {Data: []byte("# Install Guide\n\nRun `make`.\n")},
		"notes.md":         {Data: []byte("no heading here\n")},
	})

	doc, err := svc.Document(context.Background(), "guide/install")
	require.NoError(t, err)
	assert.Equal(t, "Install Guide", doc.Title)
	assert.Equal(t, "guide/install", doc.Path)
	assert.Contains(t, doc.Content, "<code>make</code>")

	doc, err = svc.Document(context.Background(), "/notes/")
	require.NoError(t, err)
	assert.Equal(t, "notes", doc.Title)
	assert.Equal(t, "notes", doc.Path)
}

func TestService_DocumentNotFound(t *testing.T) {
	t.Parallel()
	svc := newService(t, fstest.MapFS{"a.md": {Data: []byte("# A")}})

	for _, p := range []string{"missing", "../etc/passwd", ""} {
		_, err := svc.Document(context.Background(), p)
		assert.ErrorIs(t, err, doctree.ErrNotFound, p)
	}
}

func TestService_NavigationShape(t *testing.T) {
	t.Parallel()
	svc := newService(t, fstest.MapFS{
		"guide/doc10.md": {Data: []byte("x")},
		"guide/doc2.md":  {Data: []byte("x")},
		"readme.md":      {Data: []byte("x")},
	})

	nav, err := svc.Navigation(context.Background())
	require.NoError(t, err)
	require.Len(t, nav, 2)
	assert.Equal(t, "guide", nav[0].Name)
	require.Len(t, nav[0].Children, 2)
	assert.Equal(t, "guide/doc2", nav[0].Children[0].Path)
	assert.Equal(t, "guide/doc10", nav[0].Children[1].Path)
	assert.Equal(t, "readme", nav[1].Path)
}

func TestService_SearchLimits(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	for i := range 80 {
		fmt.Fprintf(&b, "needle line %d\n", i)
	}
	svc := newService(t, fstest.MapFS{"big.md": {Data: []byte(b.String())}})
	ctx := context.Background()

	api, err := svc.Search(ctx, "NEEDLE")
	require.NoError(t, err)
	assert.Len(t, api, search.APILimit)

	page, err := svc.SearchPage(ctx, "needle")
	require.NoError(t, err)
	assert.Len(t, page, search.PageLimit)
	assert.Equal(t, api, page[:search.APILimit])

	short, err := svc.Search(ctx, " n ")
	require.NoError(t, err)
	assert.Empty(t, short)
	assert.NotNil(t, short)

	snap := svc.SearchStats()
	assert.Equal(t, 2, snap.Count, "short queries are not recorded")
}

func TestService_Categories(t *testing.T) {
	t.Parallel()
	svc := newService(t, fstest.MapFS{
		"reference/api.md": {Data: []byte("x")},
		"guide/a.md":       {Data: []byte("x")},
		"top.md":           {Data: []byte("x")},
	})
	cats, err := svc.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"guide", "reference"}, cats)
}
