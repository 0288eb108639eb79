package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/dgallion1/docserve/internal/doctree"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeCachedJSON writes v with a content hash ETag and answers 304 when the
// client already holds the same representation.
func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Write(body)
}

// errorHandler writes a response for err and reports whether it did.
type errorHandler func(w http.ResponseWriter, err error) bool

func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		jsonError(w, msg, status)
		return true
	}
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(doctree.ErrNotFound, http.StatusNotFound, "File not found"),
	}
}

// handleDomainError maps err through the handler table. Anything unmatched
// is logged and answered with 500 and the endpoint's fixed message, so no
// internal detail reaches the client.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.log.Error(fallback, "path", r.URL.Path, "error", err)
	jsonError(w, fallback, http.StatusInternalServerError)
}
