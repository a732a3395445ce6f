package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitrec/internal/models"
)

const progressSelect = `SELECT p.id, p.user_id, p.workout_id, w.name, w.split_type, p.exercises, p.created_at
	FROM progressive_overloads p
	JOIN saved_workouts w ON w.id = p.workout_id`

// CreateProgress stores a progressive overload record for one of the user's
// saved workouts. Returns ErrNotFound when the workout does not exist.
func (db *DB) CreateProgress(ctx context.Context, rec *models.ProgressRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	exercises, err := marshalProgressExercises(rec.Exercises)
	if err != nil {
		return err
	}

	err = db.Pool.QueryRow(ctx,
		`INSERT INTO progressive_overloads (id, user_id, workout_id, exercises)
		 SELECT $1, $2, w.id, $4
		 FROM saved_workouts w
		 WHERE w.id = $3 AND w.user_id = $2
		 RETURNING created_at`,
		rec.ID, rec.UserID, rec.WorkoutID, exercises,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return wrapNotFound(err, "inserting progress record")
	}

	stored, err := db.GetProgress(ctx, rec.ID, rec.UserID)
	if err != nil {
		return err
	}
	*rec = *stored
	return nil
}

// ListProgress returns a user's progress records, newest first.
func (db *DB) ListProgress(ctx context.Context, userID int) ([]models.ProgressRecord, error) {
	rows, err := db.Pool.Query(ctx,
		progressSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying progress records: %w", err)
	}
	defer rows.Close()

	result := []models.ProgressRecord{}
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// GetProgress retrieves one progress record with its workout's name and split.
func (db *DB) GetProgress(ctx context.Context, id uuid.UUID, userID int) (*models.ProgressRecord, error) {
	row := db.Pool.QueryRow(ctx, progressSelect+` WHERE p.id = $1 AND p.user_id = $2`, id, userID)
	rec, err := scanProgress(row)
	if err != nil {
		return nil, wrapNotFound(err, "querying progress record")
	}
	return rec, nil
}

// UpdateProgress replaces the exercise list of a progress record.
func (db *DB) UpdateProgress(ctx context.Context, id uuid.UUID, userID int, exercises []models.ProgressExercise) (*models.ProgressRecord, error) {
	data, err := marshalProgressExercises(exercises)
	if err != nil {
		return nil, err
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE progressive_overloads SET exercises = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		id, userID, data)
	if err != nil {
		return nil, fmt.Errorf("updating progress record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return db.GetProgress(ctx, id, userID)
}

func marshalProgressExercises(exercises []models.ProgressExercise) ([]byte, error) {
	if exercises == nil {
		exercises = []models.ProgressExercise{}
	}
	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding progress exercises: %w", err)
	}
	return data, nil
}

func scanProgress(row pgx.Row) (*models.ProgressRecord, error) {
	var (
		rec       models.ProgressRecord
		exercises []byte
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.WorkoutID, &rec.WorkoutName, &rec.SplitType,
		&exercises, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exercises, &rec.Exercises); err != nil {
		return nil, fmt.Errorf("decoding progress exercises of %s: %w", rec.ID, err)
	}
	return &rec, nil
}
