package workout

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// blobVersion is written into every persisted blob.
const blobVersion = 1

// record is the persisted and over-the-wire shape of a workout.
type record struct {
	Type        Kind       `json:"type"`
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	Coords      [2]float64 `json:"coords"`
	Distance    float64    `json:"distance"`
	Duration    float64    `json:"duration"`
	Description string     `json:"description"`

	Cadence       *float64 `json:"cadence,omitempty"`
	Pace          *float64 `json:"pace,omitempty"`
	ElevationGain *float64 `json:"elevationGain,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`
}

type envelope struct {
	Version  int      `json:"version"`
	Workouts []record `json:"workouts"`
}

func (w Workout) record() record {
	r := record{
		Type:        w.kind,
		ID:          w.id,
		CreatedAt:   w.createdAt,
		Coords:      [2]float64{w.coords.Lat, w.coords.Lng},
		Distance:    w.distanceKm,
		Duration:    w.durationMin,
		Description: w.description,
	}
	switch w.kind {
	case KindRunning:
		r.Cadence = &w.running.CadenceSpm
		r.Pace = &w.running.PaceMinPerKm
	case KindCycling:
		r.ElevationGain = &w.cycling.ElevationGainM
		r.Speed = &w.cycling.SpeedKmPerH
	}
	return r
}

// MarshalJSON encodes the workout with its variant tag.
func (w Workout) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.record())
}

// UnmarshalJSON decodes a single workout, rebuilding it through restore.
func (w *Workout) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	restored, err := restore(r)
	if err != nil {
		return err
	}
	*w = restored
	return nil
}

// Marshal serializes a collection into a versioned blob.
func Marshal(ws []Workout) ([]byte, error) {
	env := envelope{Version: blobVersion, Workouts: make([]record, 0, len(ws))}
	for _, w := range ws {
		env.Workouts = append(env.Workouts, w.record())
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding workouts: %w", err)
	}
	return data, nil
}

// Unmarshal parses a blob written by Marshal. Every record is rebuilt
// through its variant constructor.
func Unmarshal(data []byte) ([]Workout, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding workouts: %w", err)
	}
	if env.Version != blobVersion {
		return nil, fmt.Errorf("unsupported blob version %d", env.Version)
	}

	ws := make([]Workout, 0, len(env.Workouts))
	for i, r := range env.Workouts {
		w, err := restore(r)
		if err != nil {
			return nil, fmt.Errorf("workout %d: %w", i, err)
		}
		ws = append(ws, w)
	}
	return ws, nil
}

// restore rebuilds a workout from persisted fields. Identity, creation time
// and description are kept; the derived metric is recomputed.
func restore(r record) (Workout, error) {
	if r.ID == "" {
		return Workout{}, fmt.Errorf("missing id")
	}
	if !positive(r.Distance) || !positive(r.Duration) {
		return Workout{}, fmt.Errorf("%s: distance and duration must be positive", r.ID)
	}

	f := Factory{
		Now:   func() time.Time { return r.CreatedAt },
		NewID: func() string { return r.ID },
	}
	at := Coordinate{Lat: r.Coords[0], Lng: r.Coords[1]}

	var w Workout
	switch r.Type {
	case KindRunning:
		if r.Cadence == nil {
			return Workout{}, fmt.Errorf("%s: running workout without cadence", r.ID)
		}
		w = f.Running(at, r.Distance, r.Duration, *r.Cadence)
	case KindCycling:
		if r.ElevationGain == nil {
			return Workout{}, fmt.Errorf("%s: cycling workout without elevation gain", r.ID)
		}
		w = f.Cycling(at, r.Distance, r.Duration, *r.ElevationGain)
	default:
		return Workout{}, fmt.Errorf("%s: unknown workout type %q", r.ID, r.Type)
	}
	if r.Description != "" {
		w.description = r.Description
	}
	return w, nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
