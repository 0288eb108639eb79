// Package site holds the browser assets and the server-rendered page
// templates.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/dgallion1/docserve/internal/doctree"
)

//go:embed static templates
var assets embed.FS

// Static returns the files served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// IndexHTML returns the single-page application shell.
func IndexHTML() []byte {
	b, err := assets.ReadFile("static/index.html")
	if err != nil {
		panic(err)
	}
	return b
}

// Page names accepted by Pages.Render.
const (
	PageWelcome  = "welcome"
	PageDocument = "document"
	PageCategory = "category"
	PageSearch   = "search"
	PageNotFound = "notfound"
)

// Layout is the data every server-rendered page shares.
type Layout struct {
	Title       string
	Navigation  doctree.Forest
	CurrentPath string
	Category    string
	Query       string
}

type CategoryCard struct {
	Name      string
	Documents int
	First     *doctree.Node
}

type WelcomePage struct {
	Layout
	Cards []CategoryCard
}

type DocumentPage struct {
	Layout
	Document   *doctree.Document
	Content    template.HTML
	Breadcrumb []doctree.Crumb
	Prev, Next *doctree.Node
}

type CategoryPage struct {
	Layout
	Node       *doctree.Node
	Breadcrumb []doctree.Crumb
	Files      []*doctree.Node
}

type SearchPage struct {
	Layout
	Hits     []doctree.Hit
	TooShort bool
	Limit    int
}

type NotFoundPage struct {
	Layout
	Path string
}

// Pages renders the server-side templates.
type Pages struct {
	pages map[string]*template.Template
}

func NewPages() (*Pages, error) {
	base, err := template.New("layout").Funcs(funcs).ParseFS(assets, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	p := &Pages{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageWelcome, PageDocument, PageCategory, PageSearch, PageNotFound} {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := t.ParseFS(assets, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.pages[name] = t
	}
	return p, nil
}

// Render executes the named page into w. Output is buffered so a template
// error never leaves a half-written page.
func (p *Pages) Render(w io.Writer, name string, data any) error {
	t, ok := p.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"isDir": func(n *doctree.Node) bool { return n.IsDir() },
}
