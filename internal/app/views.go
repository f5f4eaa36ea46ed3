package app

import (
	"strconv"
	"sync"

	"github.com/claude/mapty/internal/workout"
)

// Row is one icon/value/unit detail of a list entry.
type Row struct {
	Icon  string `json:"icon"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Entry is a rendered workout in the sidebar list.
type Entry struct {
	ID        string       `json:"id"`
	Kind      workout.Kind `json:"type"`
	Title     string       `json:"title"`
	ClassName string       `json:"class_name"`
	Rows      []Row        `json:"rows"`
}

// NewEntry renders w as a list entry.
func NewEntry(w workout.Workout) Entry {
	e := Entry{
		ID:        w.ID(),
		Kind:      w.Kind(),
		Title:     w.Description(),
		ClassName: "workout workout--" + lower(w.Kind()),
		Rows: []Row{
			{Icon: w.Kind().Icon(), Value: num(w.DistanceKm()), Unit: "km"},
			{Icon: "⏱", Value: num(w.DurationMin()), Unit: "min"},
		},
	}
	if r, ok := w.Running(); ok {
		e.Rows = append(e.Rows,
			Row{Icon: "⚡️", Value: num(r.PaceMinPerKm), Unit: "min/km"},
			Row{Icon: "🦶🏼", Value: num(r.CadenceSpm), Unit: "spm"},
		)
	}
	if c, ok := w.Cycling(); ok {
		e.Rows = append(e.Rows,
			Row{Icon: "⚡️", Value: num(c.SpeedKmPerH), Unit: "km/h"},
			Row{Icon: "⛰", Value: num(c.ElevationGainM), Unit: "m"},
		)
	}
	return e
}

func lower(k workout.Kind) string {
	if k == workout.KindCycling {
		return "cycling"
	}
	return "running"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// List is an in-memory ListView. Entries are kept newest first, the order
// they appear below the form.
type List struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *List) RenderEntry(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{e}, l.entries...)
}

// Entries copies the rendered entries, newest first.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Alerts is a Notifier that remembers every message.
type Alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *Alerts) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

// Messages returns the alerts shown so far, oldest first.
func (a *Alerts) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.msgs))
	copy(out, a.msgs)
	return out
}
