package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/models"
)

func (s *Server) handleListSavedWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.ListSavedWorkouts(r.Context(), userIDFromContext(r), parseLimit(r, 0, 0))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleCreateSavedWorkout(w http.ResponseWriter, r *http.Request) {
	var workout models.SavedWorkout
	if !decodeBody(w, r, &workout) {
		return
	}
	if err := workout.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	workout.ID = uuid.Nil
	workout.UserID = userIDFromContext(r)
	workout.CreatedAt = time.Time{}

	if _, err := s.db.InsertSavedWorkout(r.Context(), &workout); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleGetSavedWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	workout, err := s.db.GetSavedWorkout(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteSavedWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteSavedWorkout(r.Context(), id, userIDFromContext(r)); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateRequest struct {
	Exercise string `json:"exercise"`
	Rating   *int   `json:"rating"`
}

// handleRateExercise stores a 1-5 rating for one exercise of a saved workout.
func (s *Server) handleRateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Exercise) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise is required"})
		return
	}
	if req.Rating == nil || *req.Rating < 1 || *req.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be an integer from 1 to 5"})
		return
	}

	workout, err := s.db.RateExercise(r.Context(), id, userIDFromContext(r), req.Exercise, *req.Rating)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}
