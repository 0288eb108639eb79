// Package render converts corpus Markdown to HTML.
package render

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/docserve/internal/doctree"
)

// Renderer converts Markdown with GitHub-flavoured tables and fences,
// line-break-sensitive paragraphs and raw HTML passthrough.
type Renderer struct {
	md  goldmark.Markdown
	log *slog.Logger
}

// NewRenderer builds a Renderer. A nil highlighter emits plain code blocks.
func NewRenderer(h Highlighter, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{h: h, log: log}, 200)),
		),
	)
	return &Renderer{md: md, log: log}
}

// Render converts src to an HTML fragment.
func (r *Renderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("%w: %v", doctree.ErrRenderFailure, err)
	}
	return buf.String(), nil
}

// codeBlockRenderer highlights fenced code and degrades to an escaped plain
// block when highlighting fails.
type codeBlockRenderer struct {
	h   Highlighter
	log *slog.Logger
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}
	var lang string
	if n.Info != nil {
		lang = string(n.Language(source))
	}

	if r.h != nil {
		out, err := r.h.Highlight(code.String(), lang)
		if err == nil {
			_, _ = w.WriteString(out)
			return ast.WalkSkipChildren, nil
		}
		r.log.Debug("code block left unhighlighted", "lang", lang, "error", err)
	}

	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML(code.Bytes()))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
