package termdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docserve/internal/render"
)

func TestMarkdown(t *testing.T) {
	r := New()

	md, err := r.Markdown(`<h1>Install</h1><p>See <a href="#guide/usage">usage</a>.</p><ul><li>one</li><li>two</li></ul>`)
	require.NoError(t, err)
	assert.Contains(t, md, "# Install")
	assert.Contains(t, md, "[usage](#guide/usage)")
	assert.Contains(t, md, "- one")
}

func TestMarkdown_Table(t *testing.T) {
	md, err := New().Markdown(`<table><thead><tr><th>Key</th><th>Value</th></tr></thead><tbody><tr><td>a</td><td>1</td></tr></tbody></table>`)
	require.NoError(t, err)
	assert.Contains(t, md, "| Key")
	assert.Contains(t, md, "| a")
}

func TestMarkdown_Empty(t *testing.T) {
	md, err := New().Markdown("  \n")
	require.NoError(t, err)
	assert.Empty(t, md)
}

func TestRender_Plain(t *testing.T) {
	out, err := New(WithPlain(), WithWidth(60)).Render(`<h2>Usage</h2><p>Run the thing.</p>`)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage")
	assert.Contains(t, out, "Run the thing.")
	assert.NotContains(t, out, "\x1b[")
}

func TestOptions(t *testing.T) {
	assert.Equal(t, "light", New(WithTheme(render.ThemeLight)).style)
	assert.Equal(t, "dark", New(WithTheme(render.ThemeDark)).style)
	assert.Equal(t, DefaultWidth, New(WithWidth(5)).width)
	assert.Equal(t, 120, New(WithWidth(120)).width)
}
