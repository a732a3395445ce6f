package server

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 200
)

func (s *Server) handleLookupExercise(w http.ResponseWriter, r *http.Request) {
	// chi routes on RawPath when it is set, leaving the parameter escaped.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise name"})
			return
		}
		name = unescaped
	}
	entry, ok := s.catalog.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not in catalog"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := s.catalog.Search(q.Get("bodyPart"), q.Get("equipment"),
		parseLimit(r, defaultSearchLimit, maxSearchLimit))
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleBodyParts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.BodyParts())
}
