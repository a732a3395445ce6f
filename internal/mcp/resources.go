package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const recentWorkoutsLimit = 20

func (h *handlers) savedWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListSavedWorkouts(ctx, UserIDFromContext(ctx), recentWorkoutsLimit)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, workouts)
}

func (h *handlers) bodyParts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	parts, err := h.ds.BodyParts(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, parts)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
