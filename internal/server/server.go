package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/ingest"
	fitmcp "github.com/meltforce/fitrec/internal/mcp"
	"github.com/meltforce/fitrec/internal/models"
	"github.com/meltforce/fitrec/internal/storage"
)

// Store is the persistence the HTTP handlers need. *storage.DB implements it.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)

	InsertSavedWorkout(ctx context.Context, w *models.SavedWorkout) (bool, error)
	ListSavedWorkouts(ctx context.Context, userID, limit int) ([]models.SavedWorkout, error)
	GetSavedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.SavedWorkout, error)
	RateExercise(ctx context.Context, id uuid.UUID, userID int, exercise string, rating int) (*models.SavedWorkout, error)
	DeleteSavedWorkout(ctx context.Context, id uuid.UUID, userID int) error

	CreateProgress(ctx context.Context, rec *models.ProgressRecord) error
	ListProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error)
	GetProgress(ctx context.Context, id uuid.UUID, userID int) (*models.ProgressRecord, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, userID int, exercises []models.ProgressExercise) (*models.ProgressRecord, error)

	GetHistoryStats(ctx context.Context, userID int) (*storage.HistoryStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      Store
	catalog *catalog.Catalog
	ingest  *ingest.Provider
	whois   WhoIsClient
	mcp     http.Handler
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, cat *catalog.Catalog, provider *ingest.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		catalog: cat,
		ingest:  provider,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches request identity from the local dev user to the
// tailnet peer behind each connection.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// SetMCP mounts an MCP transport at /mcp. Tool calls run as the identified user.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Bulk import (API key required, identity from ?login=)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleIngest)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/api/v1/me", s.handleMe)

		r.Get("/api/v1/recommendations", s.handleStoredRecommendations)
		r.Post("/api/v1/recommendations", s.handleComputeRecommendations)

		r.Get("/api/v1/saved-workouts", s.handleListSavedWorkouts)
		r.Post("/api/v1/saved-workouts", s.handleCreateSavedWorkout)
		r.Get("/api/v1/saved-workouts/{id}", s.handleGetSavedWorkout)
		r.Delete("/api/v1/saved-workouts/{id}", s.handleDeleteSavedWorkout)
		r.Put("/api/v1/saved-workouts/{id}/ratings", s.handleRateExercise)

		r.Get("/api/v1/progressive-overload", s.handleListProgress)
		r.Post("/api/v1/progressive-overload", s.handleCreateProgress)
		r.Get("/api/v1/progressive-overload/{id}", s.handleGetProgress)
		r.Put("/api/v1/progressive-overload/{id}", s.handleUpdateProgress)

		r.Get("/api/v1/exercises", s.handleSearchExercises)
		r.Get("/api/v1/exercises/{name}", s.handleLookupExercise)
		r.Get("/api/v1/body-parts", s.handleBodyParts)

		r.Get("/api/v1/stats", s.handleStats)
		r.Get("/api/v1/imports", s.handleImportLogs)

		r.Handle("/mcp", http.HandlerFunc(s.handleMCP))
	})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp is not enabled"})
		return
	}
	ctx := fitmcp.WithUserID(r.Context(), userIDFromContext(r))
	s.mcp.ServeHTTP(w, r.WithContext(ctx))
}
