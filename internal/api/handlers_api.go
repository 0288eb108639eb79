package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleNavigation returns the navigation forest. Subtrees that could not be
// read are reported in X-Nav-Warnings rather than failing the request.
func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	tree, err := s.docs.Tree(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err, "Error getting navigation")
		return
	}
	if n := len(tree.Warnings); n > 0 {
		w.Header().Set("X-Nav-Warnings", strconv.Itoa(n))
	}
	writeJSON(w, http.StatusOK, tree.Nodes)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Document(r.Context(), wildcardPath(r))
	if err != nil {
		s.handleDomainError(w, r, err, "Error getting content")
		return
	}
	writeCachedJSON(w, r, doc)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	hits, err := s.docs.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		jsonError(w, "Search error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// wildcardPath returns the chi "*" parameter, unescaped when the router
// matched against the raw path.
func wildcardPath(r *http.Request) string {
	p := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return p
	}
	if u, err := url.PathUnescape(p); err == nil {
		return u
	}
	return p
}
