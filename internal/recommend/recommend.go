// Package recommend derives exercise recommendations, split-type preferences
// and training suggestions from a user's saved and rated workouts.
//
// Everything here is a pure function of its inputs: no I/O, no package-level
// state, so concurrent requests never interfere.
package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meltforce/fitrec/internal/catalog"
	"github.com/meltforce/fitrec/internal/models"
)

// ErrInvalidInput marks a request whose top-level shape is unusable.
var ErrInvalidInput = errors.New("invalid input")

// Result is the response of a recommendation run.
type Result struct {
	RecommendedExercises []RecommendedExercise `json:"recommendedExercises"`
	PreferredSplitTypes  []SplitTypePreference `json:"preferredSplitTypes"`
	Suggestions          []string              `json:"suggestions"`
}

// Compute runs pattern extraction, scoring, split ranking and suggestion
// generation over the given history.
func Compute(saved, rated []models.SavedWorkout, cat catalog.Lookup) Result {
	if cat == nil {
		cat = catalog.New(nil)
	}
	patterns := ExtractPatterns(saved, rated, cat)
	splits := RankSplitTypes(saved)
	return Result{
		RecommendedExercises: ScoreRecommendations(patterns, cat),
		PreferredSplitTypes:  splits,
		Suggestions:          GenerateSuggestions(patterns, splits),
	}
}

// RatedOnly returns the workouts that carry at least one rating.
func RatedOnly(saved []models.SavedWorkout) []models.SavedWorkout {
	rated := make([]models.SavedWorkout, 0, len(saved))
	for _, w := range saved {
		if w.IsRated() {
			rated = append(rated, w)
		}
	}
	return rated
}

// Request is a validated recommendation request body.
type Request struct {
	SavedWorkouts []models.SavedWorkout
	RatedWorkouts []models.SavedWorkout

	// Skipped counts array elements that were not workout objects.
	Skipped int
}

// DecodeRequest reads {"savedWorkouts": [...], "ratedWorkouts": [...]}.
// savedWorkouts must be an array; ratedWorkouts may be absent or null.
// Elements that are not objects are skipped, and fields of the wrong type
// inside an element are dropped (see models.SavedWorkout).
func DecodeRequest(r io.Reader) (*Request, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object: %v", ErrInvalidInput, err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidInput)
	}

	req := &Request{}
	saved, skipped, err := models.DecodeSavedWorkouts(body["savedWorkouts"])
	if err != nil {
		return nil, fmt.Errorf("%w: savedWorkouts must be an array", ErrInvalidInput)
	}
	req.SavedWorkouts = saved
	req.Skipped += skipped

	if raw, ok := body["ratedWorkouts"]; ok && !isNull(raw) {
		rated, skipped, err := models.DecodeSavedWorkouts(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: ratedWorkouts must be an array", ErrInvalidInput)
		}
		req.RatedWorkouts = rated
		req.Skipped += skipped
	} else {
		req.RatedWorkouts = []models.SavedWorkout{}
	}
	return req, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
