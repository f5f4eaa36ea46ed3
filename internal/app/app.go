// Package app is the workout controller: it owns the collection and the
// form, and drives the map and list views in response to user events.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/mapty/internal/geo"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/observability"
	"github.com/claude/mapty/internal/store"
	"github.com/claude/mapty/internal/workout"
)

// User-facing alert texts.
const (
	AlertNoPosition   = "Could not get your position!"
	AlertInvalidInput = "Please enter a positive number."
)

var (
	ErrAlreadyStarted = errors.New("app already started")
	ErrFormClosed     = errors.New("workout form is not open")
	ErrMapUnavailable = errors.New("map is not available")
)

// ListView renders workout list entries.
type ListView interface {
	RenderEntry(e Entry)
}

// Notifier shows a message to the user.
type Notifier interface {
	Alert(msg string)
}

// Deps are the collaborators the controller drives.
type Deps struct {
	Store    *store.Store
	Maps     mapview.Provider
	Locator  geo.Locator
	List     ListView
	Notifier Notifier
	Log      *slog.Logger
}

// Options tune the controller.
type Options struct {
	Zoom               int
	GeolocationTimeout time.Duration
	// Factory assigns ids and timestamps; the zero value is the default.
	Factory workout.Factory
}

// State is a read-only snapshot of the controller.
type State struct {
	Started  bool `json:"started"`
	MapReady bool `json:"map_ready"`
	Form     Form `json:"form"`
	Workouts int  `json:"workouts"`
}

// App is the controller. Every entry point takes the same lock, so events
// are handled one at a time in arrival order.
type App struct {
	mu sync.Mutex

	store    *store.Store
	maps     mapview.Provider
	locator  geo.Locator
	list     ListView
	notifier Notifier
	log      *slog.Logger
	opts     Options

	started bool
	m       mapview.Map // nil until the position request succeeds
	form    Form
}

// New wires a controller. Call Start once to load data and request the position.
func New(d Deps, opts Options) *App {
	if opts.GeolocationTimeout <= 0 {
		opts.GeolocationTimeout = 10 * time.Second
	}
	return &App{
		store:    d.Store,
		maps:     d.Maps,
		locator:  d.Locator,
		list:     d.List,
		notifier: d.Notifier,
		log:      d.Log,
		opts:     opts,
		form:     closedForm(workout.KindRunning),
	}
}

// Start hydrates the collection, renders its list entries and makes the
// one position request. On success the map is created, centred on the
// position, and the saved markers are placed. On failure the user is
// alerted and the map stays disabled.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.started = true
	a.store.Load(ctx)
	for w := range a.store.All() {
		a.list.RenderEntry(NewEntry(w))
	}
	a.mu.Unlock()

	posCtx, cancel := context.WithTimeout(ctx, a.opts.GeolocationTimeout)
	pos, err := a.locator.CurrentPosition(posCtx)
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		observability.RecordGeolocationFailure()
		a.log.Warn("position unavailable, map disabled", "error", err)
		a.notifier.Alert(AlertNoPosition)
		return nil
	}

	m, err := a.maps.Initialize(pos, a.opts.Zoom)
	if err != nil {
		a.log.Error("initializing map", "error", err)
		a.notifier.Alert(AlertNoPosition)
		return nil
	}
	a.m = m
	m.OnClick(a.HandleMapClick)
	for w := range a.store.All() {
		m.PlaceMarker(w.Coords(), w.PopupText(), w.Kind())
	}
	a.log.Info("map ready", "lat", pos.Lat, "lng", pos.Lng, "markers", a.store.Len())
	return nil
}

// HandleMapClick opens the form for a workout at the clicked coordinate.
func (a *App) HandleMapClick(at workout.Coordinate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.openForm(at)
}

func (a *App) openForm(at workout.Coordinate) {
	a.form.Open = true
	a.form.Pending = at
	a.form.Focus = FieldDistance
}

// SelectVariant switches the form between the cadence and elevation field.
func (a *App) SelectVariant(kind workout.Kind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form.Variant = kind
	a.form.Secondary = secondaryField(kind)
	a.form.Values.Type = string(kind)
}

// Cancel discards the open form.
func (a *App) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form = closedForm(a.form.Variant)
}

// Submit validates the form and commits a workout at the pending location.
// On a *ValidationError the form stays open with the entered values.
func (a *App) Submit(ctx context.Context, in FormInput) (workout.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.form.Open {
		return workout.Workout{}, ErrFormClosed
	}
	return a.submit(ctx, in)
}

// Log is a map click followed by a submit, as one event.
func (a *App) Log(ctx context.Context, at workout.Coordinate, in FormInput) (workout.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.m == nil {
		return workout.Workout{}, ErrMapUnavailable
	}
	a.openForm(at)
	return a.submit(ctx, in)
}

func (a *App) submit(ctx context.Context, in FormInput) (workout.Workout, error) {
	sub, err := validate(in, a.form.Variant)
	if err != nil {
		a.form.Values = in
		observability.RecordSubmissionRejected()
		a.log.Info("workout rejected", "error", err)
		a.notifier.Alert(AlertInvalidInput)
		return workout.Workout{}, err
	}

	var w workout.Workout
	switch sub.kind {
	case workout.KindRunning:
		w = a.opts.Factory.Running(a.form.Pending, sub.distance, sub.duration, sub.cadence)
	case workout.KindCycling:
		w = a.opts.Factory.Cycling(a.form.Pending, sub.distance, sub.duration, sub.elevation)
	}

	a.store.Add(ctx, w)
	if a.m != nil {
		a.m.PlaceMarker(w.Coords(), w.PopupText(), w.Kind())
	}
	a.list.RenderEntry(NewEntry(w))
	a.form = closedForm(sub.kind)

	observability.RecordWorkoutLogged(string(w.Kind()))
	a.log.Info("workout logged", "id", w.ID(), "type", w.Kind(), "distance_km", w.DistanceKm())
	return w, nil
}

// HandleListClick pans the map to the workout with the given id.
func (a *App) HandleListClick(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, err := a.store.FindByID(id)
	if err != nil {
		return err
	}
	if a.m == nil {
		return ErrMapUnavailable
	}
	a.m.SetView(w.Coords(), a.opts.Zoom, true)
	return nil
}

// Workouts returns the collection in insertion order.
func (a *App) Workouts() []workout.Workout {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Snapshot()
}

// Workout looks up one workout.
func (a *App) Workout(id string) (workout.Workout, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.FindByID(id)
}

// State snapshots the form and map status.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state()
}

// Inspect calls fn with the current state while holding the controller
// lock. Views the controller renders into can be read inside fn and will
// agree with the state.
func (a *App) Inspect(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.state())
}

func (a *App) state() State {
	return State{
		Started:  a.started,
		MapReady: a.m != nil,
		Form:     a.form,
		Workouts: a.store.Len(),
	}
}
