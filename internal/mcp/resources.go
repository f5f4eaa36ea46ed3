package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/mapty/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) workouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ws, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		ws = []workout.Workout{}
	}

	data, err := json.Marshal(ws)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
