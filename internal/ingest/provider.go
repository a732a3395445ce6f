// Package ingest imports exported saved workouts in bulk.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/meltforce/fitrec/internal/models"
	"github.com/meltforce/fitrec/internal/storage"
)

// ErrInvalidPayload is returned when the body is neither an array of
// workouts nor an object with a savedWorkouts array.
var ErrInvalidPayload = errors.New("payload must be an array of saved workouts or {\"savedWorkouts\": [...]}")

// Result holds the outcome of an ingest operation.
type Result struct {
	Received   int    `json:"received"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
	Conflicts  int    `json:"conflicts"`
	Message    string `json:"message,omitempty"`
}

// Store is the persistence needed by the provider.
type Store interface {
	InsertSavedWorkout(ctx context.Context, w *models.SavedWorkout) (bool, error)
}

// Provider stores saved-workout exports.
type Provider struct {
	db  Store
	log *slog.Logger
}

// NewProvider creates a new ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest decodes an export and stores every valid workout for userID.
// Elements that are not objects, or lack a split type or exercises, are
// counted as skipped. Workouts whose ID the user already stored count as
// duplicates; IDs owned by another user count as conflicts and are not stored.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*Result, error) {
	workouts, skipped, err := Decode(r)
	if err != nil {
		return nil, err
	}

	result := &Result{Received: len(workouts) + skipped, Skipped: skipped}
	for i := range workouts {
		w := &workouts[i]
		if err := w.Validate(); err != nil {
			p.log.Debug("skipping saved workout", "index", i, "reason", err)
			result.Skipped++
			continue
		}
		w.UserID = userID

		inserted, err := p.db.InsertSavedWorkout(ctx, w)
		if errors.Is(err, storage.ErrIDTaken) {
			p.log.Debug("saved workout id taken", "index", i, "id", w.ID)
			result.Conflicts++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("storing saved workout %d: %w", i, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Duplicates++
		}
	}

	var notes []string
	if result.Skipped > 0 {
		notes = append(notes, fmt.Sprintf("%d of %d workouts were malformed and skipped", result.Skipped, result.Received))
	}
	if result.Conflicts > 0 {
		notes = append(notes, fmt.Sprintf("%d workout ids were already taken by another user and not stored", result.Conflicts))
	}
	result.Message = strings.Join(notes, "; ")
	p.log.Info("saved workouts ingested",
		"user_id", userID,
		"received", result.Received,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
		"conflicts", result.Conflicts,
	)
	return result, nil
}

// Decode reads an export body: either a bare JSON array of saved workouts or
// an object carrying them under "savedWorkouts". It returns the decoded
// workouts and how many array elements were not objects.
func Decode(r io.Reader) ([]models.SavedWorkout, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("reading payload: %w", err)
	}
	data = bytes.TrimSpace(data)

	raw := json.RawMessage(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			SavedWorkouts json.RawMessage `json:"savedWorkouts"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		raw = wrapper.SavedWorkouts
	}

	workouts, skipped, err := models.DecodeSavedWorkouts(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return workouts, skipped, nil
}
