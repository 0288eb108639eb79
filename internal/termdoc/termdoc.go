// Package termdoc turns rendered document HTML back into Markdown and draws
// it for a terminal.
package termdoc

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/charmbracelet/glamour"

	"github.com/dgallion1/docserve/internal/render"
)

const DefaultWidth = 80

// Renderer converts document HTML to styled terminal text.
type Renderer struct {
	conv  *converter.Converter
	style string
	width int
}

type Option func(*Renderer)

// WithTheme picks the glamour style matching the reader's theme.
func WithTheme(t render.Theme) Option {
	return func(r *Renderer) {
		if t == render.ThemeLight {
			r.style = "light"
		} else {
			r.style = "dark"
		}
	}
}

// WithPlain disables colour and decoration, for pipes and tests.
func WithPlain() Option {
	return func(r *Renderer) { r.style = "notty" }
}

// WithWidth sets the wrap column. Values under 20 fall back to the default.
func WithWidth(w int) Option {
	return func(r *Renderer) {
		if w >= 20 {
			r.width = w
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		style: "dark",
		width: DefaultWidth,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Markdown converts an HTML fragment to Markdown.
func (r *Renderer) Markdown(fragment string) (string, error) {
	if strings.TrimSpace(fragment) == "" {
		return "", nil
	}
	md, err := r.conv.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return md, nil
}

// Render draws an HTML fragment for the terminal. When conversion or styling
// fails the fragment's plain text is returned along with the error.
func (r *Renderer) Render(fragment string) (string, error) {
	md, err := r.Markdown(fragment)
	if err != nil {
		return render.PlainText(fragment), err
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return render.PlainText(fragment), fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return render.PlainText(fragment), fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
