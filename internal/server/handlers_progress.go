package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/models"
)

type progressRequest struct {
	WorkoutID uuid.UUID                 `json:"workoutId"`
	Exercises []models.ProgressExercise `json:"exercises"`
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.ListProgress(r.Context(), userIDFromContext(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.WorkoutID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutId is required"})
		return
	}
	if err := models.ValidateProgressExercises(req.Exercises); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec := &models.ProgressRecord{
		UserID:    userIDFromContext(r),
		WorkoutID: req.WorkoutID,
		Exercises: req.Exercises,
	}
	if err := s.db.CreateProgress(r.Context(), rec); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rec, err := s.db.GetProgress(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := models.ValidateProgressExercises(req.Exercises); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec, err := s.db.UpdateProgress(r.Context(), id, userIDFromContext(r), req.Exercises)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
