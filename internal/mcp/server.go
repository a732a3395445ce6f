package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitRec", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitRec workout recommendation server. Read saved workouts and ratings, "+
			"look up exercises in the catalog, and get exercise, split-type and training suggestions. "+
			"All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetRecommendations, Handler: h.getRecommendations},
		server.ServerTool{Tool: toolListSavedWorkouts, Handler: h.listSavedWorkouts},
		server.ServerTool{Tool: toolGetSavedWorkout, Handler: h.getSavedWorkout},
		server.ServerTool{Tool: toolLookupExercise, Handler: h.lookupExercise},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
		server.ServerTool{Tool: toolGetHistoryStats, Handler: h.getHistoryStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resSavedWorkouts, Handler: h.savedWorkouts},
		server.ServerResource{Resource: resBodyParts, Handler: h.bodyParts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resSavedWorkouts = mcp.NewResource(
	"fitrec://saved_workouts",
	"Saved Workouts",
	mcp.WithResourceDescription("The 20 most recently saved workouts with their exercises and ratings"),
	mcp.WithMIMEType("application/json"),
)

var resBodyParts = mcp.NewResource(
	"fitrec://body_parts",
	"Body Parts",
	mcp.WithResourceDescription("All body parts known to the exercise catalog"),
	mcp.WithMIMEType("application/json"),
)
