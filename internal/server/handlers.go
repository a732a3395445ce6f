package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/recommend"
	"github.com/meltforce/fitrec/internal/storage"
)

// maxBodyBytes bounds request bodies, including bulk imports.
const maxBodyBytes = 10 << 20

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// handleComputeRecommendations runs the engine over a history supplied in the
// request body. Nothing is read from or written to storage.
func (s *Server) handleComputeRecommendations(w http.ResponseWriter, r *http.Request) {
	req, err := recommend.DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Skipped > 0 {
		s.log.Warn("ignored malformed workouts in recommendation request", "skipped", req.Skipped)
	}
	writeJSON(w, http.StatusOK, recommend.Compute(req.SavedWorkouts, req.RatedWorkouts, s.catalog))
}

// handleStoredRecommendations runs the engine over the caller's stored
// workouts. Rated workouts are those carrying at least one rating.
func (s *Server) handleStoredRecommendations(w http.ResponseWriter, r *http.Request) {
	saved, err := s.db.ListSavedWorkouts(r.Context(), userIDFromContext(r), 0)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommend.Compute(saved, recommend.RatedOnly(saved), s.catalog))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// storeError maps storage errors to 404 or 500.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.log.Error("storage error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// decodeBody decodes a JSON request body into v, writing 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// idParam parses the {id} URL parameter, writing 400 when it is not a UUID.
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

// parseLimit reads ?limit=, falling back to def for missing or invalid values
// and clamping to max.
func parseLimit(r *http.Request, def, max int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
