package store

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/mapty/internal/workout"
)

// fakePersister is an in-memory Persister with injectable failures.
type fakePersister struct {
	blob    string
	set     bool
	saves   int
	saveErr error
	loadErr error
	// saveCtx is the context of the last Save.
	saveCtx context.Context
}

func (f *fakePersister) Save(ctx context.Context, blob string) error {
	f.saves++
	f.saveCtx = ctx
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.blob, f.set = blob, true
	return nil
}

func (f *fakePersister) Load(context.Context) (string, bool, error) {
	return f.blob, f.set, f.loadErr
}

func at(t time.Time, id string) workout.Factory {
	return workout.Factory{Now: func() time.Time { return t }, NewID: func() string { return id }}
}

func twoWorkouts() []workout.Workout {
	day := time.Date(2026, time.October, 18, 8, 0, 0, 0, time.UTC)
	return []workout.Workout{
		at(day, "a").Running(workout.Coordinate{Lat: 40, Lng: -73.9}, 5, 25, 180),
		at(day.Add(time.Hour), "b").Cycling(workout.Coordinate{Lat: 40.1, Lng: -73.8}, 20, 60, 300),
	}
}

// TestAddPersistsEveryAppend verifies each Add saves the full collection
// before returning.
func TestAddPersistsEveryAppend(t *testing.T) {
	p := &fakePersister{}
	s := New(p, slog.Default())
	ctx := context.Background()

	for i, w := range twoWorkouts() {
		s.Add(ctx, w)
		if p.saves != i+1 {
			t.Fatalf("saves after %d adds = %d", i+1, p.saves)
		}
		saved, err := workout.Unmarshal([]byte(p.blob))
		if err != nil {
			t.Fatal(err)
		}
		if len(saved) != i+1 {
			t.Errorf("persisted %d workouts, want %d", len(saved), i+1)
		}
	}
}

// TestAddSwallowsSaveError verifies a failing persister does not lose the
// in-memory append.
func TestAddSwallowsSaveError(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("quota exceeded")}
	s := New(p, slog.Default())
	s.Add(context.Background(), twoWorkouts()[0])
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

// TestAddSavesAfterCallerCancels verifies a cancelled caller context does
// not stop the write, and that the write still has a deadline.
func TestAddSavesAfterCallerCancels(t *testing.T) {
	p := &fakePersister{}
	s := New(p, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Add(ctx, twoWorkouts()[0])

	if !p.set {
		t.Fatal("blob not saved after the caller cancelled")
	}
	if _, ok := p.saveCtx.Deadline(); !ok {
		t.Error("save context has no deadline")
	}
}

// TestFindByID verifies lookup by id and the not-found sentinel.
func TestFindByID(t *testing.T) {
	s := New(&fakePersister{}, slog.Default())
	for _, w := range twoWorkouts() {
		s.Add(context.Background(), w)
	}
	w, err := s.FindByID("b")
	if err != nil {
		t.Fatal(err)
	}
	if w.Kind() != workout.KindCycling {
		t.Errorf("kind = %s, want Cycling", w.Kind())
	}
	if _, err := s.FindByID("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// TestAllInsertionOrderRestartable verifies All yields in insertion order and
// can be ranged over repeatedly, including after an early break.
func TestAllInsertionOrderRestartable(t *testing.T) {
	s := New(&fakePersister{}, slog.Default())
	for _, w := range twoWorkouts() {
		s.Add(context.Background(), w)
	}

	for range 2 {
		var ids []string
		for w := range s.All() {
			ids = append(ids, w.ID())
		}
		if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
			t.Errorf("ids = %v, want [a b]", ids)
		}
	}

	for w := range s.All() {
		if w.ID() != "a" {
			t.Errorf("first = %s, want a", w.ID())
		}
		break
	}
}

// TestLoadRestoresVariants verifies a persisted collection comes back with
// variant-specific fields on the right records.
func TestLoadRestoresVariants(t *testing.T) {
	p := &fakePersister{}
	first := New(p, slog.Default())
	for _, w := range twoWorkouts() {
		first.Add(context.Background(), w)
	}

	second := New(p, slog.Default())
	second.Load(context.Background())
	if second.Len() != 2 {
		t.Fatalf("Len = %d, want 2", second.Len())
	}
	ws := second.Snapshot()
	if r, ok := ws[0].Running(); !ok || r.PaceMinPerKm != 5.0 {
		t.Errorf("first: running=%v pace=%v", ok, r.PaceMinPerKm)
	}
	if c, ok := ws[1].Cycling(); !ok || c.SpeedKmPerH != 20.0 {
		t.Errorf("second: cycling=%v speed=%v", ok, c.SpeedKmPerH)
	}
}

// TestLoadIdempotent verifies two loads in a row give the same content.
func TestLoadIdempotent(t *testing.T) {
	blob, err := workout.Marshal(twoWorkouts())
	if err != nil {
		t.Fatal(err)
	}
	s := New(&fakePersister{blob: string(blob), set: true}, slog.Default())
	s.Load(context.Background())
	a := s.Snapshot()
	s.Load(context.Background())
	b := s.Snapshot()
	if len(a) != len(b) {
		t.Fatalf("lengths %d vs %d", len(a), len(b))
	}
	for i := range a {
		ja, _ := a[i].MarshalJSON()
		jb, _ := b[i].MarshalJSON()
		if string(ja) != string(jb) {
			t.Errorf("workout %d differs:\n%s\n%s", i, ja, jb)
		}
	}
}

// TestLoadDegradesToEmpty verifies absent, corrupt and unreadable blobs all
// leave an empty collection, even if workouts were added before.
func TestLoadDegradesToEmpty(t *testing.T) {
	tests := map[string]func(p *fakePersister){
		"absent":     func(p *fakePersister) { p.blob, p.set = "", false },
		"corrupt":    func(p *fakePersister) { p.blob = "not json" },
		"unreadable": func(p *fakePersister) { p.loadErr = errors.New("disk gone") },
	}
	for name, breakIt := range tests {
		t.Run(name, func(t *testing.T) {
			p := &fakePersister{}
			s := New(p, slog.Default())
			s.Add(context.Background(), twoWorkouts()[0])
			breakIt(p)
			s.Load(context.Background())
			if s.Len() != 0 {
				t.Errorf("Len = %d, want 0", s.Len())
			}
		})
	}
}
