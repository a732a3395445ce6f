package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/fitrec/internal/models"
	"github.com/meltforce/fitrec/internal/storage"
)

type memStore struct {
	byID map[uuid.UUID]models.SavedWorkout
	fail error
}

func (m *memStore) InsertSavedWorkout(_ context.Context, w *models.SavedWorkout) (bool, error) {
	if m.fail != nil {
		return false, m.fail
	}
	if m.byID == nil {
		m.byID = make(map[uuid.UUID]models.SavedWorkout)
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if prev, ok := m.byID[w.ID]; ok {
		if prev.UserID != w.UserID {
			return false, storage.ErrIDTaken
		}
		return false, nil
	}
	m.byID[w.ID] = *w
	return true, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestIngestArray verifies valid workouts are stored for the given user and
// malformed ones are counted as skipped.
func TestIngestArray(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, quietLogger())

	body := `[
		{"splitType": "push_pull_legs", "exercises": {"chest": ["Bench Press"]}},
		{"splitType": "", "exercises": {"chest": ["Bench Press"]}},
		{"splitType": "bro_split", "exercises": {}},
		{"splitType": "bro_split", "exercises": {"chest": []}},
		{"splitType": "bro_split", "exercises": {"chest": [5, {"n": "x"}]}},
		"garbage",
		{"splitType": "bro_split", "exercises": {"arms": ["Dumbbell Curl"]}, "ratings": {"Dumbbell Curl": 4}}
	]`
	res, err := p.Ingest(context.Background(), strings.NewReader(body), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Received != 7 || res.Inserted != 2 || res.Skipped != 5 || res.Duplicates != 0 {
		t.Errorf("result = %+v, want received 7, inserted 2, skipped 5", res)
	}
	if res.Message == "" {
		t.Error("expected a message about skipped workouts")
	}
	for _, w := range store.byID {
		if w.UserID != 7 {
			t.Errorf("stored workout user = %d, want 7", w.UserID)
		}
	}
}

// TestIngestWrapped verifies the {"savedWorkouts": [...]} form is accepted and
// re-imported IDs are reported as duplicates.
func TestIngestWrapped(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, quietLogger())
	body := `{"savedWorkouts": [
		{"id": "6f1c2a4e-9d51-4c1b-8a37-2b0f7e5d9c11", "splitType": "total_body", "exercises": {"legs": ["Barbell Squat"]}}
	]}`

	for i, wantInserted := range []int{1, 0} {
		res, err := p.Ingest(context.Background(), strings.NewReader(body), 1)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		if res.Inserted != wantInserted || res.Duplicates != 1-wantInserted {
			t.Errorf("run %d: result = %+v", i, res)
		}
	}
}

// TestIngestIDTakenByOtherUser verifies an ID owned by another user is
// reported as a conflict, not a duplicate, and the stored workout is kept.
func TestIngestIDTakenByOtherUser(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, quietLogger())
	body := `[{"id": "6f1c2a4e-9d51-4c1b-8a37-2b0f7e5d9c11", "splitType": "total_body", "exercises": {"legs": ["Barbell Squat"]}}]`

	if _, err := p.Ingest(context.Background(), strings.NewReader(body), 1); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	res, err := p.Ingest(context.Background(), strings.NewReader(body), 2)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if res.Conflicts != 1 || res.Duplicates != 0 || res.Inserted != 0 {
		t.Errorf("result = %+v, want one conflict", res)
	}
	if !strings.Contains(res.Message, "already taken") {
		t.Errorf("message = %q, want mention of the taken id", res.Message)
	}
	for _, w := range store.byID {
		if w.UserID != 1 {
			t.Errorf("stored workout user = %d, want 1", w.UserID)
		}
	}
}

// TestIngestInvalidPayload verifies top-level shapes other than an array or
// wrapper object are rejected.
func TestIngestInvalidPayload(t *testing.T) {
	p := NewProvider(&memStore{}, quietLogger())
	for _, body := range []string{``, `42`, `"x"`, `{"workouts": []}`, `{"savedWorkouts": {}}`, `{not json`} {
		_, err := p.Ingest(context.Background(), strings.NewReader(body), 1)
		if !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Ingest(%q) error = %v, want ErrInvalidPayload", body, err)
		}
	}
}

// TestIngestStoreError verifies storage failures are returned wrapped.
func TestIngestStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	p := NewProvider(&memStore{fail: boom}, quietLogger())
	body := `[{"splitType": "bro_split", "exercises": {"arms": ["Dumbbell Curl"]}}]`

	_, err := p.Ingest(context.Background(), strings.NewReader(body), 1)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

// TestDecodeEmptyArray verifies an empty export decodes to nothing without error.
func TestDecodeEmptyArray(t *testing.T) {
	workouts, skipped, err := Decode(strings.NewReader(" [] "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workouts) != 0 || skipped != 0 {
		t.Errorf("decoded %d, skipped %d; want 0 and 0", len(workouts), skipped)
	}
}
