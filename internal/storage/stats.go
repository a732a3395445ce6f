package storage

import (
	"context"
	"fmt"
	"time"
)

// HistoryStats holds aggregate statistics about a user's workout history.
type HistoryStats struct {
	SavedWorkouts   int64           `json:"savedWorkouts"`
	RatedWorkouts   int64           `json:"ratedWorkouts"`
	ProgressRecords int64           `json:"progressRecords"`
	FirstSaved      *time.Time      `json:"firstSaved"`
	LastSaved       *time.Time      `json:"lastSaved"`
	SplitTypes      []SplitTypeStat `json:"splitTypes"`
}

// SplitTypeStat counts saved workouts of one split type.
type SplitTypeStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// GetHistoryStats returns aggregate statistics for a user's stored workouts.
func (db *DB) GetHistoryStats(ctx context.Context, userID int) (*HistoryStats, error) {
	stats := &HistoryStats{SplitTypes: []SplitTypeStat{}}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE ratings <> '{}'::jsonb),
		        MIN(created_at),
		        MAX(created_at)
		 FROM saved_workouts WHERE user_id = $1`, userID,
	).Scan(&stats.SavedWorkouts, &stats.RatedWorkouts, &stats.FirstSaved, &stats.LastSaved)
	if err != nil {
		return nil, fmt.Errorf("counting saved workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM progressive_overloads WHERE user_id = $1`, userID,
	).Scan(&stats.ProgressRecords)
	if err != nil {
		return nil, fmt.Errorf("counting progress records: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT split_type, COUNT(*)
		 FROM saved_workouts
		 WHERE user_id = $1
		 GROUP BY split_type
		 ORDER BY COUNT(*) DESC, split_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying split types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s SplitTypeStat
		if err := rows.Scan(&s.Name, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning split type stat: %w", err)
		}
		stats.SplitTypes = append(stats.SplitTypes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
