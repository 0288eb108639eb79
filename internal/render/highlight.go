package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrNoLexer means neither the language tag nor auto-detection found a lexer.
var ErrNoLexer = errors.New("no lexer")

// Highlighter turns a code block into highlighted HTML.
type Highlighter interface {
	Highlight(code, lang string) (string, error)
}

// Theme selects the highlighting stylesheet.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// StyleName returns the chroma style used for a theme.
func StyleName(t Theme) string {
	if t == ThemeLight {
		return "github"
	}
	return "github-dark"
}

// Chroma highlights with chroma lexers and emits CSS classes so the page
// stylesheet decides the colours.
type Chroma struct {
	formatter *chromahtml.Formatter
}

func NewChroma() *Chroma {
	return &Chroma{formatter: chromahtml.New(chromahtml.WithClasses(true))}
}

// Highlight uses the lexer named by lang, falling back to content analysis.
// A panic inside a lexer is reported as an error.
func (c *Chroma) Highlight(code, lang string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("highlight %q: %v", lang, r)
		}
	}()

	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return "", ErrNoLexer
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %q: %w", lang, err)
	}
	var b strings.Builder
	if err := c.formatter.Format(&b, styles.Get(StyleName(ThemeDark)), it); err != nil {
		return "", fmt.Errorf("format %q: %w", lang, err)
	}
	return b.String(), nil
}

// WriteCSS writes the class stylesheet for the theme.
func (c *Chroma) WriteCSS(w io.Writer, t Theme) error {
	return c.formatter.WriteCSS(w, styles.Get(StyleName(t)))
}
