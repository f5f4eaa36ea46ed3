package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/claude/mapty/internal/config"
	"github.com/claude/mapty/internal/workout"
)

// TestFromConfig verifies a configured home yields a fixed position and no
// home yields a denial.
func TestFromConfig(t *testing.T) {
	got, err := FromConfig(&config.Coordinate{Lat: 40, Lng: -73.9}).CurrentPosition(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := (workout.Coordinate{Lat: 40, Lng: -73.9}); got != want {
		t.Errorf("position = %+v, want %+v", got, want)
	}

	_, err = FromConfig(nil).CurrentPosition(context.Background())
	if !errors.Is(err, ErrPositionUnavailable) {
		t.Errorf("error = %v, want ErrPositionUnavailable", err)
	}
}

// TestFixedHonoursCancellation verifies an expired context wins over the fixed answer.
func TestFixedHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Fixed{}).CurrentPosition(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
