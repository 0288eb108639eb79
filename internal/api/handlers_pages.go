package api

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/dgallion1/docserve/internal/doctree"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/search"
	"github.com/dgallion1/docserve/internal/site"
)

// handleIndex serves the single-page shell for every unmatched path; the
// client resolves the route from the URL fragment.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(site.IndexHTML())
}

func (s *Server) handleChromaCSS(theme render.Theme) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(s.chromaCSS[theme])
	}
}

func (s *Server) handleWelcomePage(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.pageNavigation(w, r)
	if !ok {
		return
	}
	var cards []site.CategoryCard
	for _, n := range nav {
		if !n.IsDir() {
			continue
		}
		cards = append(cards, site.CategoryCard{
			Name:      n.Name,
			Documents: len(doctree.Forest(n.Children).Files()),
			First:     doctree.FirstFile(n),
		})
	}
	s.renderPage(w, http.StatusOK, site.PageWelcome, site.WelcomePage{
		Layout: site.Layout{Navigation: nav},
		Cards:  cards,
	})
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.pageNavigation(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	page := site.SearchPage{
		Layout: site.Layout{Title: "Search", Navigation: nav, Query: q},
		Limit:  search.PageLimit,
	}
	if _, searchable := search.Normalize(q); !searchable {
		page.TooShort = true
		s.renderPage(w, http.StatusOK, site.PageSearch, page)
		return
	}
	hits, err := s.docs.SearchPage(r.Context(), q)
	if err != nil {
		http.Error(w, "Search error", http.StatusInternalServerError)
		return
	}
	page.Hits = hits
	s.renderPage(w, http.StatusOK, site.PageSearch, page)
}

// handleDocPage renders a document, a category listing, or the not-found
// page for any other path.
func (s *Server) handleDocPage(w http.ResponseWriter, r *http.Request) {
	p := strings.Trim(wildcardPath(r), "/")
	if p == "" {
		s.handleWelcomePage(w, r)
		return
	}
	nav, ok := s.pageNavigation(w, r)
	if !ok {
		return
	}
	layout := site.Layout{Navigation: nav, CurrentPath: p, Category: doctree.CategoryOf(p)}

	doc, err := s.docs.Document(r.Context(), p)
	switch {
	case err == nil:
		content, err := render.Postprocess(doc.Content, render.LinkPath)
		if err != nil {
			s.log.Error("Error getting content", "path", p, "error", err)
			http.Error(w, "Error getting content", http.StatusInternalServerError)
			return
		}
		layout.Title = doc.Title
		prev, next := nav.Neighbors(doc.Path)
		s.renderPage(w, http.StatusOK, site.PageDocument, site.DocumentPage{
			Layout:     layout,
			Document:   doc,
			Content:    template.HTML(content),
			Breadcrumb: doctree.Breadcrumb(doc.Path),
			Prev:       prev,
			Next:       next,
		})
	case errors.Is(err, doctree.ErrNotFound):
		if node := nav.Find(p); node != nil && node.IsDir() {
			layout.Title = node.Name
			s.renderPage(w, http.StatusOK, site.PageCategory, site.CategoryPage{
				Layout:     layout,
				Node:       node,
				Breadcrumb: doctree.Breadcrumb(node.Path),
				Files:      doctree.Forest(node.Children).Files(),
			})
			return
		}
		layout.Title = "Not found"
		s.renderPage(w, http.StatusNotFound, site.PageNotFound, site.NotFoundPage{Layout: layout, Path: p})
	default:
		s.log.Error("Error getting content", "path", p, "error", err)
		http.Error(w, "Error getting content", http.StatusInternalServerError)
	}
}

func (s *Server) pageNavigation(w http.ResponseWriter, r *http.Request) (doctree.Forest, bool) {
	nav, err := s.docs.Navigation(r.Context())
	if err != nil {
		s.log.Error("Error getting navigation", "error", err)
		http.Error(w, "Error getting navigation", http.StatusInternalServerError)
		return nil, false
	}
	return nav, true
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	var buf strings.Builder
	if err := s.pages.Render(&buf, name, data); err != nil {
		s.log.Error("page render failed", "page", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(buf.String()))
}
