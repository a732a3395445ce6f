package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/fitrec/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

var toolGetRecommendations = mcp.NewTool("get_recommendations",
	mcp.WithDescription("Recommend exercises from the user's saved and rated workouts. Returns recommended exercises with a 60-100 confidence score, "+
		"preferred split types scored by share of saved workouts, and up to three training suggestions."),
)

var toolListSavedWorkouts = mcp.NewTool("list_saved_workouts",
	mcp.WithDescription("List the user's saved workouts, newest first. Each workout has a split type, exercises grouped by muscle group, and per-exercise ratings (1-5)."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts. Defaults to 20.")),
)

var toolGetSavedWorkout = mcp.NewTool("get_saved_workout",
	mcp.WithDescription("Retrieve a single saved workout by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Saved workout ID (UUID)")),
)

var toolLookupExercise = mcp.NewTool("lookup_exercise",
	mcp.WithDescription("Look up an exercise in the catalog by exact name (case-insensitive). Returns body part, equipment, level and description."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name, e.g. 'Bench Press'")),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by body part and/or equipment (case-insensitive exact match)."),
	mcp.WithString("body_part", mcp.Description("Body part, e.g. 'Chest', 'Quadriceps'")),
	mcp.WithString("equipment", mcp.Description("Equipment, e.g. 'Barbell', 'Dumbbell', 'None' for bodyweight")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of exercises. Defaults to 20.")),
)

var toolGetHistoryStats = mcp.NewTool("get_history_stats",
	mcp.WithDescription("Counts of saved workouts, rated workouts and progress records, first/last save time, and workouts per split type."),
)

func (h *handlers) getRecommendations(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.ds.Recommendations(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_recommendations", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) listSavedWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := clampLimit(req.GetInt("limit", defaultListLimit))

	workouts, err := h.ds.ListSavedWorkouts(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp list_saved_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(workouts)
}

func (h *handlers) getSavedWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("id must be a UUID"), nil
	}

	workout, err := h.ds.GetSavedWorkout(ctx, id, UserIDFromContext(ctx))
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("saved workout not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_saved_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(workout)
}

func (h *handlers) lookupExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	entry, err := h.ds.LookupExercise(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("exercise not in catalog: " + name), nil
	}
	if err != nil {
		h.log.Error("mcp lookup_exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entry)
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bodyPart := req.GetString("body_part", "")
	equipment := req.GetString("equipment", "")
	if bodyPart == "" && equipment == "" {
		return mcp.NewToolResultError("body_part or equipment is required"), nil
	}

	entries, err := h.ds.SearchExercises(ctx, bodyPart, equipment, clampLimit(req.GetInt("limit", defaultListLimit)))
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) getHistoryStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetHistoryStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_history_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
