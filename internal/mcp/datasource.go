package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/models"
	"github.com/meltforce/fitrec/internal/recommend"
	"github.com/meltforce/fitrec/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both Local (database and
// catalog in-process) and HTTPClient (remote via REST API) satisfy it.
// Missing workouts and exercises are reported as storage.ErrNotFound.
type DataSource interface {
	Recommendations(ctx context.Context, userID int) (*recommend.Result, error)
	ListSavedWorkouts(ctx context.Context, userID, limit int) ([]models.SavedWorkout, error)
	GetSavedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.SavedWorkout, error)
	GetHistoryStats(ctx context.Context, userID int) (*storage.HistoryStats, error)
	LookupExercise(ctx context.Context, name string) (*catalog.Entry, error)
	SearchExercises(ctx context.Context, bodyPart, equipment string, limit int) ([]catalog.Entry, error)
	BodyParts(ctx context.Context) ([]string, error)
}

// Store is the subset of *storage.DB that Local reads from.
type Store interface {
	ListSavedWorkouts(ctx context.Context, userID, limit int) ([]models.SavedWorkout, error)
	GetSavedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.SavedWorkout, error)
	GetHistoryStats(ctx context.Context, userID int) (*storage.HistoryStats, error)
}

// Compile-time checks.
var (
	_ Store      = (*storage.DB)(nil)
	_ DataSource = (*Local)(nil)
)

// Local serves MCP tools straight from the database and an in-memory catalog.
type Local struct {
	db  Store
	cat *catalog.Catalog
}

// NewLocal creates a Local data source.
func NewLocal(db Store, cat *catalog.Catalog) *Local {
	return &Local{db: db, cat: cat}
}

// Recommendations runs the engine over every saved workout of the user.
func (l *Local) Recommendations(ctx context.Context, userID int) (*recommend.Result, error) {
	saved, err := l.db.ListSavedWorkouts(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("loading saved workouts: %w", err)
	}
	res := recommend.Compute(saved, recommend.RatedOnly(saved), l.cat)
	return &res, nil
}

func (l *Local) ListSavedWorkouts(ctx context.Context, userID, limit int) ([]models.SavedWorkout, error) {
	return l.db.ListSavedWorkouts(ctx, userID, limit)
}

func (l *Local) GetSavedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.SavedWorkout, error) {
	return l.db.GetSavedWorkout(ctx, id, userID)
}

func (l *Local) GetHistoryStats(ctx context.Context, userID int) (*storage.HistoryStats, error) {
	return l.db.GetHistoryStats(ctx, userID)
}

func (l *Local) LookupExercise(_ context.Context, name string) (*catalog.Entry, error) {
	entry, ok := l.cat.Lookup(name)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &entry, nil
}

func (l *Local) SearchExercises(_ context.Context, bodyPart, equipment string, limit int) ([]catalog.Entry, error) {
	return l.cat.Search(bodyPart, equipment, limit), nil
}

func (l *Local) BodyParts(context.Context) ([]string, error) {
	return l.cat.BodyParts(), nil
}
