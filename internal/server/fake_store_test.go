package server

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/ingest"
	"github.com/meltforce/fitrec/internal/models"
	"github.com/meltforce/fitrec/internal/storage"
)

const testAPIKey = "test-key"

// fakeStore is an in-memory Store keyed the same way as the Postgres tables.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]int
	workouts map[uuid.UUID]models.SavedWorkout
	progress map[uuid.UUID]models.ProgressRecord
	imports  []storage.ImportLog
	clock    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]int{"local": 1},
		workouts: make(map[uuid.UUID]models.SavedWorkout),
		progress: make(map[uuid.UUID]models.ProgressRecord),
		clock:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 1
	f.users[login] = id
	return id, nil
}

func (f *fakeStore) InsertSavedWorkout(_ context.Context, w *models.SavedWorkout) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if prev, ok := f.workouts[w.ID]; ok {
		if prev.UserID != w.UserID {
			return false, storage.ErrIDTaken
		}
		return false, nil
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = f.tick()
	}
	f.workouts[w.ID] = *w
	return true, nil
}

func (f *fakeStore) ListSavedWorkouts(_ context.Context, userID, limit int) ([]models.SavedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.SavedWorkout{}
	for _, w := range f.workouts {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetSavedWorkout(_ context.Context, id uuid.UUID, userID int) (*models.SavedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok || w.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &w, nil
}

func (f *fakeStore) RateExercise(_ context.Context, id uuid.UUID, userID int, exercise string, rating int) (*models.SavedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok || w.UserID != userID {
		return nil, storage.ErrNotFound
	}
	ratings := models.Ratings{}
	for k, v := range w.Ratings {
		ratings[k] = v
	}
	ratings[exercise] = float64(rating)
	w.Ratings = ratings
	f.workouts[id] = w
	return &w, nil
}

func (f *fakeStore) DeleteSavedWorkout(_ context.Context, id uuid.UUID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok || w.UserID != userID {
		return storage.ErrNotFound
	}
	delete(f.workouts, id)
	for pid, p := range f.progress {
		if p.WorkoutID == id {
			delete(f.progress, pid)
		}
	}
	return nil
}

func (f *fakeStore) CreateProgress(_ context.Context, rec *models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[rec.WorkoutID]
	if !ok || w.UserID != rec.UserID {
		return storage.ErrNotFound
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = f.tick()
	rec.WorkoutName = w.Name
	rec.SplitType = w.SplitType
	f.progress[rec.ID] = *rec
	return nil
}

func (f *fakeStore) ListProgress(_ context.Context, userID int) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ProgressRecord{}
	for _, p := range f.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetProgress(_ context.Context, id uuid.UUID, userID int) (*models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[id]
	if !ok || p.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) UpdateProgress(_ context.Context, id uuid.UUID, userID int, exercises []models.ProgressExercise) (*models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[id]
	if !ok || p.UserID != userID {
		return nil, storage.ErrNotFound
	}
	p.Exercises = exercises
	f.progress[id] = p
	return &p, nil
}

func (f *fakeStore) GetHistoryStats(_ context.Context, userID int) (*storage.HistoryStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &storage.HistoryStats{SplitTypes: []storage.SplitTypeStat{}}
	for _, w := range f.workouts {
		if w.UserID != userID {
			continue
		}
		stats.SavedWorkouts++
		if w.IsRated() {
			stats.RatedWorkouts++
		}
	}
	for _, p := range f.progress {
		if p.UserID == userID {
			stats.ProgressRecords++
		}
	}
	return stats, nil
}

func (f *fakeStore) InsertImportLog(_ context.Context, log storage.ImportLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = int64(len(f.imports) + 1)
	f.imports = append(f.imports, log)
	return log.ID, nil
}

func (f *fakeStore) QueryImportLogs(_ context.Context, userID, limit int) ([]storage.ImportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []storage.ImportLog{}
	for i := len(f.imports) - 1; i >= 0 && len(out) < limit; i-- {
		if f.imports[i].UserID == userID {
			out = append(out, f.imports[i])
		}
	}
	return out, nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Title: "Bench Press", BodyPart: "Chest", Equipment: "Barbell"},
		{Title: "Push Up", BodyPart: "Chest", Equipment: "None"},
		{Title: "Pull Up", BodyPart: "Lats", Equipment: "None"},
		{Title: "Barbell Squat", BodyPart: "Quadriceps", Equipment: "Barbell"},
	})
}

func newTestServer() (*Server, *fakeStore) {
	store := newFakeStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, testCatalog(), ingest.NewProvider(store, log), testAPIKey, log), store
}
