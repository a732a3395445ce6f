package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProgressExercise is the current working weight and reps for one exercise.
type ProgressExercise struct {
	Name          string  `json:"name"`
	CurrentWeight float64 `json:"currentWeight"`
	CurrentReps   int     `json:"currentReps"`
}

// ProgressRecord tracks progressive overload for the exercises of a saved workout.
type ProgressRecord struct {
	ID          uuid.UUID          `json:"id,omitzero"`
	UserID      int                `json:"-"`
	WorkoutID   uuid.UUID          `json:"workoutId"`
	WorkoutName string             `json:"workoutName,omitempty"`
	SplitType   string             `json:"splitType,omitempty"`
	Exercises   []ProgressExercise `json:"exercises"`
	CreatedAt   time.Time          `json:"createdAt,omitzero"`
}

// ValidateProgressExercises checks names are present and numbers non-negative.
func ValidateProgressExercises(exercises []ProgressExercise) error {
	for i, ex := range exercises {
		if ex.Name == "" {
			return fmt.Errorf("exercises[%d]: name is required", i)
		}
		if ex.CurrentWeight < 0 {
			return fmt.Errorf("exercises[%d]: currentWeight must not be negative", i)
		}
		if ex.CurrentReps < 0 {
			return fmt.Errorf("exercises[%d]: currentReps must not be negative", i)
		}
	}
	return nil
}
