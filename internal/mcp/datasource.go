package mcp

import (
	"context"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/workout"
)

// DataSource abstracts the controller for MCP tools. Both Local (in
// process) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context) ([]workout.Workout, error)
	GetWorkout(ctx context.Context, id string) (workout.Workout, error)
	LogWorkout(ctx context.Context, at workout.Coordinate, in app.FormInput) (workout.Workout, error)
	FocusWorkout(ctx context.Context, id string) error
}

// Local serves MCP tools straight from the controller.
type Local struct {
	App *app.App
}

var _ DataSource = Local{}

func (l Local) ListWorkouts(context.Context) ([]workout.Workout, error) {
	return l.App.Workouts(), nil
}

func (l Local) GetWorkout(_ context.Context, id string) (workout.Workout, error) {
	return l.App.Workout(id)
}

func (l Local) LogWorkout(ctx context.Context, at workout.Coordinate, in app.FormInput) (workout.Workout, error) {
	return l.App.Log(ctx, at, in)
}

func (l Local) FocusWorkout(_ context.Context, id string) error {
	return l.App.HandleListClick(id)
}
