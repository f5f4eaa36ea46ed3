// Package workout defines the two workout variants and their derived metrics.
package workout

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the variant discriminant of a workout.
type Kind string

const (
	KindRunning Kind = "Running"
	KindCycling Kind = "Cycling"
)

// ParseKind accepts the variant name in any case ("running", "Cycling", ...).
func ParseKind(s string) (Kind, bool) {
	switch {
	case strings.EqualFold(s, string(KindRunning)):
		return KindRunning, true
	case strings.EqualFold(s, string(KindCycling)):
		return KindCycling, true
	}
	return "", false
}

// Coordinate is a WGS 84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Running holds the running-only fields.
type Running struct {
	CadenceSpm   float64
	PaceMinPerKm float64
}

// Cycling holds the cycling-only fields.
type Cycling struct {
	ElevationGainM float64
	SpeedKmPerH    float64
}

// Workout is an immutable workout record. Exactly one of the variant
// payloads is meaningful, selected by Kind.
type Workout struct {
	id          string
	kind        Kind
	createdAt   time.Time
	coords      Coordinate
	distanceKm  float64
	durationMin float64
	description string

	running Running
	cycling Cycling
}

func (w Workout) ID() string { return w.id }
func (w Workout) Kind() Kind { return w.kind }
func (w Workout) CreatedAt() time.Time { return w.createdAt }
func (w Workout) Coords() Coordinate { return w.coords }
func (w Workout) DistanceKm() float64 { return w.distanceKm }
func (w Workout) DurationMin() float64 { return w.durationMin }
func (w Workout) Description() string { return w.description }
func (w Workout) IsZero() bool { return w.id == "" }

// Running returns the running payload; ok is false for other variants.
func (w Workout) Running() (Running, bool) {
	return w.running, w.kind == KindRunning
}

// Cycling returns the cycling payload; ok is false for other variants.
func (w Workout) Cycling() (Cycling, bool) {
	return w.cycling, w.kind == KindCycling
}

// Factory assigns ids and creation times. The zero value uses the wall
// clock and UUIDv7 ids, which sort by creation time.
type Factory struct {
	Now   func() time.Time
	NewID func() string
}

var defaultFactory Factory

// NewRunning builds a running workout with the package defaults.
func NewRunning(at Coordinate, distanceKm, durationMin, cadenceSpm float64) Workout {
	return defaultFactory.Running(at, distanceKm, durationMin, cadenceSpm)
}

// NewCycling builds a cycling workout with the package defaults.
func NewCycling(at Coordinate, distanceKm, durationMin, elevationGainM float64) Workout {
	return defaultFactory.Cycling(at, distanceKm, durationMin, elevationGainM)
}

// Running builds a running workout. Inputs are not validated.
func (f Factory) Running(at Coordinate, distanceKm, durationMin, cadenceSpm float64) Workout {
	w := f.base(KindRunning, at, distanceKm, durationMin)
	w.running = Running{CadenceSpm: cadenceSpm, PaceMinPerKm: Pace(distanceKm, durationMin)}
	return w
}

// Cycling builds a cycling workout. Inputs are not validated.
func (f Factory) Cycling(at Coordinate, distanceKm, durationMin, elevationGainM float64) Workout {
	w := f.base(KindCycling, at, distanceKm, durationMin)
	w.cycling = Cycling{ElevationGainM: elevationGainM, SpeedKmPerH: Speed(distanceKm, durationMin)}
	return w
}

func (f Factory) base(kind Kind, at Coordinate, distanceKm, durationMin float64) Workout {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	newID := func() string { return uuid.Must(uuid.NewV7()).String() }
	if f.NewID != nil {
		newID = f.NewID
	}
	created := now()
	return Workout{
		id:          newID(),
		kind:        kind,
		createdAt:   created,
		coords:      at,
		distanceKm:  distanceKm,
		durationMin: durationMin,
		description: Describe(kind, created),
	}
}

// Pace returns minutes per kilometre rounded to one decimal.
func Pace(distanceKm, durationMin float64) float64 {
	return Round1(durationMin / distanceKm)
}

// Speed returns kilometres per hour rounded to one decimal.
func Speed(distanceKm, durationMin float64) float64 {
	return Round1(distanceKm / (durationMin / 60))
}

// Round1 rounds to one decimal place, halves away from zero. The value is
// rounded as its shortest decimal form reads, so 1.15 gives 1.2. Non-finite
// values and magnitudes of 1e14 or more are returned unchanged.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= 1e14 {
		return x
	}
	digits := strconv.FormatFloat(math.Abs(x), 'f', -1, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	frac += "00"

	tenths, err := strconv.ParseInt(whole+frac[:1], 10, 64)
	if err != nil {
		return x
	}
	if frac[1] >= '5' {
		tenths++
	}
	return math.Copysign(float64(tenths)/10, x)
}
