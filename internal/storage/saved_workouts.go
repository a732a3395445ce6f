package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitrec/internal/models"
)

const savedWorkoutColumns = `id, user_id, name, split_type, exercises, ratings, created_at`

// InsertSavedWorkout stores a workout for w.UserID. A zero ID gets a fresh
// UUID and a zero CreatedAt becomes NOW(); both are written back into w.
// Returns false without error when the user already has a workout with the
// same ID, and ErrIDTaken when another user owns that ID.
func (db *DB) InsertSavedWorkout(ctx context.Context, w *models.SavedWorkout) (bool, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	exercises, err := json.Marshal(nonNilGroups(w.Exercises))
	if err != nil {
		return false, fmt.Errorf("encoding exercises: %w", err)
	}
	ratings, err := json.Marshal(nonNilRatings(w.Ratings))
	if err != nil {
		return false, fmt.Errorf("encoding ratings: %w", err)
	}
	var createdAt *time.Time
	if !w.CreatedAt.IsZero() {
		createdAt = &w.CreatedAt
	}

	err = db.Pool.QueryRow(ctx,
		`INSERT INTO saved_workouts (id, user_id, name, split_type, exercises, ratings, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at`,
		w.ID, w.UserID, w.Name, w.SplitType, exercises, ratings, createdAt,
	).Scan(&w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var owner int
		err := db.Pool.QueryRow(ctx, `SELECT user_id FROM saved_workouts WHERE id = $1`, w.ID).Scan(&owner)
		if err != nil {
			return false, fmt.Errorf("checking saved workout owner: %w", err)
		}
		if owner != w.UserID {
			return false, ErrIDTaken
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inserting saved workout: %w", err)
	}
	return true, nil
}

// ListSavedWorkouts returns a user's saved workouts, newest first. A limit of
// zero or less returns all of them.
func (db *DB) ListSavedWorkouts(ctx context.Context, userID, limit int) ([]models.SavedWorkout, error) {
	query := `SELECT ` + savedWorkoutColumns + ` FROM saved_workouts
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying saved workouts: %w", err)
	}
	defer rows.Close()

	result := []models.SavedWorkout{}
	for rows.Next() {
		w, err := scanSavedWorkout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// GetSavedWorkout retrieves one of the user's saved workouts.
func (db *DB) GetSavedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.SavedWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+savedWorkoutColumns+` FROM saved_workouts WHERE id = $1 AND user_id = $2`,
		id, userID)
	w, err := scanSavedWorkout(row)
	if err != nil {
		return nil, wrapNotFound(err, "querying saved workout")
	}
	return w, nil
}

// RateExercise sets the rating of one exercise, keeping the other ratings.
func (db *DB) RateExercise(ctx context.Context, id uuid.UUID, userID int, exercise string, rating int) (*models.SavedWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE saved_workouts
		 SET ratings = ratings || jsonb_build_object($3::text, $4::int)
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+savedWorkoutColumns,
		id, userID, exercise, rating)
	w, err := scanSavedWorkout(row)
	if err != nil {
		return nil, wrapNotFound(err, "rating exercise")
	}
	return w, nil
}

// DeleteSavedWorkout removes a saved workout and, by cascade, its progress records.
func (db *DB) DeleteSavedWorkout(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM saved_workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting saved workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSavedWorkout(row pgx.Row) (*models.SavedWorkout, error) {
	var (
		w                  models.SavedWorkout
		exercises, ratings []byte
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.SplitType, &exercises, &ratings, &w.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises of %s: %w", w.ID, err)
	}
	if err := json.Unmarshal(ratings, &w.Ratings); err != nil {
		return nil, fmt.Errorf("decoding ratings of %s: %w", w.ID, err)
	}
	return &w, nil
}

func nonNilGroups(g models.ExerciseGroups) models.ExerciseGroups {
	if g == nil {
		return models.ExerciseGroups{}
	}
	return g
}

func nonNilRatings(r models.Ratings) models.Ratings {
	if r == nil {
		return models.Ratings{}
	}
	return r
}
