// Package geo supplies the user's current position.
package geo

import (
	"context"
	"errors"

	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/workout"
)

// ErrPositionUnavailable is returned when no position can be determined.
var ErrPositionUnavailable = errors.New("position unavailable")

// Locator answers a single current-position request.
type Locator interface {
	CurrentPosition(ctx context.Context) (workout.Coordinate, error)
}

// Fixed always reports the same coordinate.
type Fixed struct {
	At workout.Coordinate
}

func (f Fixed) CurrentPosition(ctx context.Context) (workout.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return workout.Coordinate{}, err
	}
	return f.At, nil
}

// Denied behaves like a user who refused location access.
type Denied struct{}

func (Denied) CurrentPosition(context.Context) (workout.Coordinate, error) {
	return workout.Coordinate{}, ErrPositionUnavailable
}

// FromConfig returns a Fixed locator for the configured home, or Denied
// when none is set.
func FromConfig(home *config.Coordinate) Locator {
	if home == nil {
		return Denied{}
	}
	return Fixed{At: workout.Coordinate{Lat: home.Lat, Lng: home.Lng}}
}
