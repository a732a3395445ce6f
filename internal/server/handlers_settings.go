package server

import (
	"context"
	"net/http"
	"time"

	"github.com/meltforce/fitrec/internal/ingest"
	"github.com/meltforce/fitrec/internal/storage"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetHistoryStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), parseLimit(r, 50, 500))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleIngest bulk-imports saved workouts. The owner is ?login= when given,
// otherwise the dev user.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	uid := devUserID
	if login := r.URL.Query().Get("login"); login != "" {
		var err error
		uid, err = s.db.GetOrCreateUser(r.Context(), login, "")
		if err != nil {
			s.storeError(w, err)
			return
		}
	}

	start := time.Now()
	result, err := s.ingest.Ingest(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes), uid)
	s.logImport(uid, r.Header.Get("User-Agent"), result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("ingest error", "error", err)
		status := http.StatusInternalServerError
		if result == nil {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source string, result *ingest.Result, importErr error, durationMs int) {
	if source == "" {
		source = "api"
	}
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	log := storage.ImportLog{
		UserID:       uid,
		Source:       source,
		Status:       status,
		DurationMs:   &durationMs,
		ErrorMessage: errMsg,
	}
	if result != nil {
		log.WorkoutsReceived = result.Received
		log.WorkoutsInserted = result.Inserted
		log.WorkoutsSkipped = result.Skipped + result.Conflicts
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout,
// detached from a request that may already be finishing.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
