package api

import (
	"net/http"
)

func (s *Server) handleSearchStats(w http.ResponseWriter, r *http.Request) {
	backend := "scan"
	if s.cfg.SearchIndex {
		backend = "index"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backend": backend,
		"stats":   s.docs.SearchStats(),
	})
}
