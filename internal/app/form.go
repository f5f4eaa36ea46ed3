package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/mapty/internal/workout"
)

// FormInput is the raw content of the workout form. Numbers arrive as the
// strings the user typed.
type FormInput struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Field names used for focus and validation errors.
const (
	FieldType      = "type"
	FieldDistance  = "distance"
	FieldDuration  = "duration"
	FieldCadence   = "cadence"
	FieldElevation = "elevation"
)

// Form is the visible state of the workout form.
type Form struct {
	Open      bool               `json:"open"`
	Pending   workout.Coordinate `json:"pending"`
	Variant   workout.Kind       `json:"variant"`
	Secondary string             `json:"secondary"`
	Focus     string             `json:"focus,omitempty"`
	Values    FormInput          `json:"values"`
}

func closedForm(variant workout.Kind) Form {
	return Form{Variant: variant, Secondary: secondaryField(variant), Values: FormInput{Type: string(variant)}}
}

// secondaryField is the variant-specific input shown next to distance and duration.
func secondaryField(kind workout.Kind) string {
	if kind == workout.KindCycling {
		return FieldElevation
	}
	return FieldCadence
}

// ValidationError describes the first form field that failed validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Field, e.Value, e.Reason)
}

// submission is a validated form.
type submission struct {
	kind      workout.Kind
	distance  float64
	duration  float64
	cadence   float64
	elevation float64
}

// parseNumber reads a form value. Blank or non-numeric text becomes NaN.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validate checks every number is finite, and that distance, duration and
// (for running) cadence are strictly positive. Cycling elevation may be
// zero or negative. The derived pace or speed must be finite too.
func validate(in FormInput, fallback workout.Kind) (submission, error) {
	kind := fallback
	if in.Type != "" {
		k, ok := workout.ParseKind(in.Type)
		if !ok {
			return submission{}, &ValidationError{Field: FieldType, Value: in.Type, Reason: "is not a workout type"}
		}
		kind = k
	}

	type check struct {
		field    string
		raw      string
		positive bool
	}
	checks := []check{
		{FieldDistance, in.Distance, true},
		{FieldDuration, in.Duration, true},
	}
	if kind == workout.KindRunning {
		checks = append(checks, check{FieldCadence, in.Cadence, true})
	} else {
		checks = append(checks, check{FieldElevation, in.Elevation, false})
	}

	values := make([]float64, len(checks))
	for i, c := range checks {
		v := parseNumber(c.raw)
		if !finite(v) {
			return submission{}, &ValidationError{Field: c.field, Value: c.raw, Reason: "is not a number"}
		}
		if c.positive && v <= 0 {
			return submission{}, &ValidationError{Field: c.field, Value: c.raw, Reason: "must be positive"}
		}
		values[i] = v
	}

	s := submission{kind: kind, distance: values[0], duration: values[1]}
	var metric float64
	if kind == workout.KindRunning {
		s.cadence = values[2]
		metric = workout.Pace(s.distance, s.duration)
	} else {
		s.elevation = values[2]
		metric = workout.Speed(s.distance, s.duration)
	}
	// A pace or speed that overflows could never be saved.
	if !finite(metric) {
		return submission{}, &ValidationError{Field: FieldDuration, Value: in.Duration, Reason: "is out of range for the distance"}
	}
	return s, nil
}
