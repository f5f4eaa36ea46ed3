// Package store keeps the ordered workout collection and mirrors it to a
// blob persister after every append.
package store

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/claude/mapty/internal/observability"
	"github.com/claude/mapty/internal/workout"
)

// ErrNotFound is returned when no workout has the requested id.
var ErrNotFound = errors.New("workout not found")

// Persister saves and loads the serialized collection.
type Persister interface {
	Save(ctx context.Context, blob string) error
	// Load reports ok=false when nothing has been saved yet.
	Load(ctx context.Context) (blob string, ok bool, err error)
}

// Store is the ordered workout collection. It is not safe for concurrent
// use; the controller serializes access.
type Store struct {
	persister Persister
	log       *slog.Logger
	workouts  []workout.Workout
}

// New creates an empty Store backed by p.
func New(p Persister, log *slog.Logger) *Store {
	return &Store{persister: p, log: log}
}

// SaveTimeout bounds the write made by Add.
const SaveTimeout = 10 * time.Second

// Add appends w and persists the whole collection before returning.
// Persistence failures are logged, never returned. The write ignores
// cancellation of ctx: once appended, the workout is saved even if the
// caller has gone away.
func (s *Store) Add(ctx context.Context, w workout.Workout) {
	s.workouts = append(s.workouts, w)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SaveTimeout)
	defer cancel()
	s.persist(saveCtx)
}

func (s *Store) persist(ctx context.Context) {
	blob, err := workout.Marshal(s.workouts)
	if err != nil {
		observability.RecordPersistenceFailure("save")
		s.log.Error("serializing workouts", "count", len(s.workouts), "error", err)
		return
	}
	if err := s.persister.Save(ctx, string(blob)); err != nil {
		observability.RecordPersistenceFailure("save")
		s.log.Error("saving workouts", "count", len(s.workouts), "error", err)
		return
	}
	s.log.Debug("workouts saved", "count", len(s.workouts), "bytes", len(blob))
}

// FindByID scans the collection for id.
func (s *Store) FindByID(id string) (workout.Workout, error) {
	for _, w := range s.workouts {
		if w.ID() == id {
			return w, nil
		}
	}
	return workout.Workout{}, ErrNotFound
}

// Load replaces the collection with the persisted one. An absent, unreadable
// or malformed blob leaves the collection empty.
func (s *Store) Load(ctx context.Context) {
	s.workouts = nil

	blob, ok, err := s.persister.Load(ctx)
	if err != nil {
		observability.RecordPersistenceFailure("load")
		s.log.Warn("loading workouts, starting empty", "error", err)
		return
	}
	if !ok {
		s.log.Debug("no saved workouts")
		return
	}

	ws, err := workout.Unmarshal([]byte(blob))
	if err != nil {
		observability.RecordPersistenceFailure("load")
		s.log.Warn("discarding malformed workouts blob", "bytes", len(blob), "error", err)
		return
	}
	s.workouts = ws
	s.log.Info("workouts loaded", "count", len(ws))
}

// All yields the workouts in insertion order. The sequence can be ranged
// over any number of times.
func (s *Store) All() iter.Seq[workout.Workout] {
	return func(yield func(workout.Workout) bool) {
		for _, w := range s.workouts {
			if !yield(w) {
				return
			}
		}
	}
}

// Len is the number of stored workouts.
func (s *Store) Len() int {
	return len(s.workouts)
}

// Snapshot copies the collection.
func (s *Store) Snapshot() []workout.Workout {
	return slices.Clone(s.workouts)
}
