package doctree_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docserve/internal/doctree"
)

func sampleForest() doctree.Forest {
	return doctree.Forest{
		{Name: "empty", Kind: doctree.KindDirectory, Path: "empty"},
		{Name: "guide", Kind: doctree.KindDirectory, Path: "guide", Children: []*doctree.Node{
			{Name: "advanced", Kind: doctree.KindDirectory, Path: "guide/advanced", Children: []*doctree.Node{
				{Name: "tuning", Kind: doctree.KindFile, Path: "guide/advanced/tuning"},
			}},
			{Name: "install", Kind: doctree.KindFile, Path: "guide/install"},
			{Name: "usage", Kind: doctree.KindFile, Path: "guide/usage"},
			{Name: "faq", Kind: doctree.KindFile, Path: "guide/faq"},
		}},
		{Name: "readme", Kind: doctree.KindFile, Path: "readme"},
	}
}

func TestNodeJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleForest()[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"empty","type":"directory","path":"empty","children":[]}]`, string(data))

	data, err = json.Marshal(sampleForest()[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"readme","type":"file","path":"readme"}`, string(data))
}

func TestNodeJSONRoundTripKeepsNesting(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(sampleForest())
	require.NoError(t, err)

	var got doctree.Forest
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 3)
	assert.NotNil(t, got[0].Children)
	assert.Equal(t, "guide/advanced/tuning", got[1].Children[0].Children[0].Path)
	assert.Nil(t, got[2].Children)
}

func TestForestFiles(t *testing.T) {
	t.Parallel()

	var paths []string
	for _, f := range sampleForest().Files() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"guide/advanced/tuning", "guide/install", "guide/usage", "guide/faq", "readme"}, paths)
}

func TestFirstFile(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	assert.Nil(t, doctree.FirstFile(f.Category("empty")))
	assert.Equal(t, "guide/advanced/tuning", doctree.FirstFile(f.Category("guide")).Path)
	assert.Nil(t, doctree.FirstFile(nil))
}

func TestNeighbors(t *testing.T) {
	t.Parallel()

	f := sampleForest()

	prev, next := f.Neighbors("guide/install")
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "guide/usage", next.Path)

	prev, next = f.Neighbors("guide/usage")
	assert.Equal(t, "guide/install", prev.Path)
	assert.Equal(t, "guide/faq", next.Path)

	prev, next = f.Neighbors("guide/faq")
	assert.Equal(t, "guide/usage", prev.Path)
	assert.Nil(t, next, "last document in a category has no next")

	// Nested documents are not direct siblings of the category.
	prev, next = f.Neighbors("guide/advanced/tuning")
	assert.Nil(t, prev)
	assert.Nil(t, next)

	prev, next = f.Neighbors("readme")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestFind(t *testing.T) {
	t.Parallel()

	f := sampleForest()
	assert.Equal(t, "tuning", f.Find("guide/advanced/tuning").Name)
	assert.Nil(t, f.Find("missing"))
}

func TestBreadcrumb(t *testing.T) {
	t.Parallel()

	crumbs := doctree.Breadcrumb("guide/advanced/tuning")
	assert.Equal(t, []doctree.Crumb{
		{Label: "guide", Path: "guide", Link: true},
		{Label: "advanced", Path: "guide/advanced", Link: true},
		{Label: "tuning", Path: "guide/advanced/tuning", Link: false},
	}, crumbs)
	assert.Nil(t, doctree.Breadcrumb(""))
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "guide", doctree.CategoryOf("guide/install"))
	assert.Equal(t, "readme", doctree.CategoryOf("readme"))
	assert.Equal(t, "", doctree.CategoryOf(""))
}
