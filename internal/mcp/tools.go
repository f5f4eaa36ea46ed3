package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// numberArg renders a numeric tool argument the way the form would hold it.
// Missing arguments are blank, which the form rejects.
func numberArg(req mcp.CallToolRequest, name string) string {
	v, ok := req.GetArguments()[name]
	if !ok || v == nil {
		return ""
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts in creation order. Each has distance (km), duration (min), location and either pace (min/km) and cadence (spm) for running, or speed (km/h) and elevation gain (m) for cycling."),
	mcp.WithString("type", mcp.Description("Only this workout type."), mcp.Enum("Running", "Cycling")),
	mcp.WithString("since", mcp.Description("Only workouts created at or after this date (ISO 8601 or YYYY-MM-DD).")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log a workout at a map coordinate, exactly as if the user clicked the map and submitted the form. Distance, duration and running cadence must be positive; cycling elevation gain may be zero or negative."),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude")),
	mcp.WithString("type", mcp.Required(), mcp.Enum("Running", "Cycling")),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithNumber("cadence", mcp.Description("Running cadence in steps per minute")),
	mcp.WithNumber("elevation", mcp.Description("Cycling elevation gain in metres")),
)

var toolFocusWorkout = mcp.NewTool("focus_workout",
	mcp.WithDescription("Pan the map to a workout's location, as a click on its list entry does."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var kind workout.Kind
	if t := req.GetString("type", ""); t != "" {
		k, ok := workout.ParseKind(t)
		if !ok {
			return mcp.NewToolResultError("unknown workout type " + t), nil
		}
		kind = k
	}
	var since time.Time
	if s := req.GetString("since", ""); s != "" {
		t, err := parseFlexTime(s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		since = t
	}

	ws, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]workout.Workout, 0, len(ws))
	for _, w := range ws {
		if kind != "" && w.Kind() != kind {
			continue
		}
		if w.CreatedAt().Before(since) {
			continue
		}
		out = append(out, w)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	w, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("workout " + id + ": " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError("lat parameter is required"), nil
	}
	lng, err := req.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError("lng parameter is required"), nil
	}
	kind, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}

	in := app.FormInput{
		Type:      kind,
		Distance:  numberArg(req, "distance"),
		Duration:  numberArg(req, "duration"),
		Cadence:   numberArg(req, "cadence"),
		Elevation: numberArg(req, "elevation"),
	}
	w, err := h.ds.LogWorkout(ctx, workout.Coordinate{Lat: lat, Lng: lng}, in)
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(app.AlertInvalidInput + " (" + verr.Error() + ")"), nil
		}
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("log failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) focusWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if err := h.ds.FocusWorkout(ctx, id); err != nil {
		return mcp.NewToolResultError("focus failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText("map centred on workout " + id), nil
}
