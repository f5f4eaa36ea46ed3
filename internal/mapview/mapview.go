// Package mapview defines the map widget contract and a headless
// implementation whose state is read back by the web page.
package mapview

import (
	"errors"
	"strings"
	"sync"

	"github.com/claude/mapty/internal/workout"
)

var (
	// ErrNotInitialized is returned for clicks before the map exists.
	ErrNotInitialized = errors.New("map not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("map already initialized")
)

// Provider creates the map.
type Provider interface {
	Initialize(center workout.Coordinate, zoom int) (Map, error)
}

// Map is an initialized map handle.
type Map interface {
	OnClick(fn func(workout.Coordinate))
	PlaceMarker(at workout.Coordinate, popup string, kind workout.Kind)
	SetView(center workout.Coordinate, zoom int, animate bool)
}

// Marker is a placed marker with its popup.
type Marker struct {
	At        workout.Coordinate `json:"at"`
	Popup     string             `json:"popup"`
	ClassName string             `json:"class_name"`
}

// State is a snapshot of the canvas.
type State struct {
	Ready   bool               `json:"ready"`
	Center  workout.Coordinate `json:"center"`
	Zoom    int                `json:"zoom"`
	Animate bool               `json:"animate"`
	Markers []Marker           `json:"markers"`
}

// Canvas is a headless map. It records view changes and markers and
// dispatches clicks injected through Click. Safe for concurrent use.
type Canvas struct {
	mu       sync.Mutex
	state    State
	handlers []func(workout.Coordinate)
}

var (
	_ Provider = (*Canvas)(nil)
	_ Map      = (*Canvas)(nil)
)

// NewCanvas returns an uninitialized canvas.
func NewCanvas() *Canvas {
	return &Canvas{}
}

func (c *Canvas) Initialize(center workout.Coordinate, zoom int) (Map, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Ready {
		return nil, ErrAlreadyInitialized
	}
	c.state.Ready = true
	c.state.Center = center
	c.state.Zoom = zoom
	return c, nil
}

func (c *Canvas) OnClick(fn func(workout.Coordinate)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

func (c *Canvas) PlaceMarker(at workout.Coordinate, popup string, kind workout.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Markers = append(c.state.Markers, Marker{
		At:        at,
		Popup:     popup,
		ClassName: strings.ToLower(string(kind)) + "-popup",
	})
}

func (c *Canvas) SetView(center workout.Coordinate, zoom int, animate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Center = center
	c.state.Zoom = zoom
	c.state.Animate = animate
}

// Click delivers a map click to every registered handler.
func (c *Canvas) Click(at workout.Coordinate) error {
	c.mu.Lock()
	if !c.state.Ready {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	handlers := append([]func(workout.Coordinate){}, c.handlers...)
	c.mu.Unlock()

	// handlers may call back into the canvas
	for _, fn := range handlers {
		fn(at)
	}
	return nil
}

// Snapshot copies the current state.
func (c *Canvas) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Markers = append([]Marker{}, c.state.Markers...)
	return s
}
