package router

import (
	"maps"
	"slices"

	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/render"
)

// View is the main-pane mode.
type View int

const (
	ViewWelcome View = iota
	ViewDocument
)

func (v View) String() string {
	if v == ViewDocument {
		return "document"
	}
	return "welcome"
}

// Notice is a transient error message shown to the reader.
type Notice struct {
	ID      int
	Message string
}

// State is everything a view needs to draw the browser. Values returned by
// Router.State are copies and safe to keep.
type State struct {
	View          View
	Theme         render.Theme
	SidebarOpen   bool
	ViewportWidth int

	Navigation     doctree.Forest
	CurrentPath    string
	ActiveCategory string
	Collapsed      map[string]bool

	// Document content has internal links rewritten for fragment routing.
	Document   *doctree.Document
	Breadcrumb []doctree.Crumb
	Prev, Next *doctree.Node

	SearchQuery   string
	SearchResults []doctree.Hit
	SearchOpen    bool

	Loading bool
	Notices []Notice
}

func (s State) clone() State {
	c := s
	c.Collapsed = maps.Clone(s.Collapsed)
	c.Breadcrumb = slices.Clone(s.Breadcrumb)
	c.SearchResults = slices.Clone(s.SearchResults)
	c.Notices = slices.Clone(s.Notices)
	if s.Document != nil {
		d := *s.Document
		c.Document = &d
	}
	return c
}

// IsCollapsed reports whether the sidebar hides the category's documents.
func (s State) IsCollapsed(category string) bool {
	return s.Collapsed[category]
}
