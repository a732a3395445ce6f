package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotObject is returned when a saved workout payload is not a JSON object.
var ErrNotObject = errors.New("saved workout is not a JSON object")

// Timestamp accepts RFC 3339 strings and MongoDB extended JSON dates
// ({"$date": "..."} or {"$date": {"$numberLong": "..."}}) as found in exports.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return t.Parse(s)
	}
	var ext struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(data, &ext); err != nil || ext.Date == nil {
		return fmt.Errorf("cannot parse timestamp %s", data)
	}
	if err := json.Unmarshal(ext.Date, &s); err == nil {
		return t.Parse(s)
	}
	var long struct {
		Millis string `json:"$numberLong"`
	}
	if err := json.Unmarshal(ext.Date, &long); err == nil && long.Millis != "" {
		var ms int64
		if _, err := fmt.Sscan(long.Millis, &ms); err != nil {
			return fmt.Errorf("cannot parse timestamp millis %q: %w", long.Millis, err)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var ms int64
	if err := json.Unmarshal(ext.Date, &ms); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	return fmt.Errorf("cannot parse timestamp %s", data)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}

// Parse parses an RFC 3339 string, with or without fractional seconds.
func (t *Timestamp) Parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// ExerciseGroups maps a category (e.g. "chest", "legs") to the exercise names in it.
//
// Decoding is lenient: a non-object value decodes to an empty map, category
// values that are not arrays are dropped, and non-string array entries are dropped.
type ExerciseGroups map[string][]string

func (g *ExerciseGroups) UnmarshalJSON(data []byte) error {
	groups := ExerciseGroups{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*g = groups
		return nil
	}
	for category, value := range raw {
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil || items == nil {
			continue
		}
		names := make([]string, 0, len(items))
		for _, item := range items {
			if isNull(item) {
				continue
			}
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				continue
			}
			names = append(names, name)
		}
		groups[category] = names
	}
	*g = groups
	return nil
}

// Len returns the total number of exercise entries across all categories.
func (g ExerciseGroups) Len() int {
	n := 0
	for _, names := range g {
		n += len(names)
	}
	return n
}

// Ratings maps an exercise name to the star rating the user gave it.
// Non-numeric values are dropped while decoding.
type Ratings map[string]float64

func (r *Ratings) UnmarshalJSON(data []byte) error {
	ratings := Ratings{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*r = ratings
		return nil
	}
	for name, value := range raw {
		if isNull(value) {
			continue
		}
		var rating float64
		if err := json.Unmarshal(value, &rating); err != nil {
			continue
		}
		ratings[name] = rating
	}
	*r = ratings
	return nil
}

// SavedWorkout is a workout plan saved by a user.
type SavedWorkout struct {
	ID        uuid.UUID      `json:"id,omitzero"`
	UserID    int            `json:"-"`
	Name      string         `json:"name,omitempty"`
	SplitType string         `json:"splitType"`
	Exercises ExerciseGroups `json:"exercises"`
	Ratings   Ratings        `json:"ratings"`
	CreatedAt time.Time      `json:"createdAt,omitzero"`
}

// IsRated reports whether the workout carries at least one rating.
func (w SavedWorkout) IsRated() bool {
	return len(w.Ratings) > 0
}

// Validate checks the fields required to persist a workout.
func (w SavedWorkout) Validate() error {
	if w.SplitType == "" {
		return fmt.Errorf("splitType is required")
	}
	if w.Exercises.Len() == 0 {
		return fmt.Errorf("at least one exercise is required")
	}
	return nil
}

// UnmarshalJSON decodes a saved workout leniently. Only a payload that is not
// a JSON object is an error; wrongly typed fields decode to their zero value.
func (w *SavedWorkout) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return ErrNotObject
	}
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Name      json.RawMessage `json:"name"`
		SplitType json.RawMessage `json:"splitType"`
		Exercises ExerciseGroups  `json:"exercises"`
		Ratings   Ratings         `json:"ratings"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding saved workout: %w", err)
	}

	*w = SavedWorkout{
		Name:      stringOrEmpty(raw.Name),
		SplitType: stringOrEmpty(raw.SplitType),
		Exercises: raw.Exercises,
		Ratings:   raw.Ratings,
	}
	if w.Exercises == nil {
		w.Exercises = ExerciseGroups{}
	}
	if w.Ratings == nil {
		w.Ratings = Ratings{}
	}
	if id, err := uuid.Parse(stringOrEmpty(raw.ID)); err == nil {
		w.ID = id
	}
	if raw.CreatedAt != nil {
		var ts Timestamp
		if err := ts.UnmarshalJSON(raw.CreatedAt); err == nil {
			w.CreatedAt = ts.Time
		}
	}
	return nil
}

func stringOrEmpty(raw json.RawMessage) string {
	if raw == nil || isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// ErrNotArray is returned by DecodeSavedWorkouts when raw is not a JSON array.
var ErrNotArray = errors.New("saved workouts are not a JSON array")

// DecodeSavedWorkouts decodes a JSON array of saved workouts, skipping
// elements that are not objects. It fails only when raw is not an array.
func DecodeSavedWorkouts(raw json.RawMessage) ([]SavedWorkout, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, ErrNotArray
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNotArray, err)
	}

	workouts := make([]SavedWorkout, 0, len(items))
	skipped := 0
	for _, item := range items {
		var w SavedWorkout
		if err := json.Unmarshal(item, &w); err != nil {
			skipped++
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, skipped, nil
}
