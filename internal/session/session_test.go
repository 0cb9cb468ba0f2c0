package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository/memstore"
	"alcyxob/workout-tracker/internal/timer"
)

// idleTicker never fires, so timers only move when told to.
type idleTicker struct{ c chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.c }
func (t idleTicker) Stop()               {}

func newIdleTicker(time.Duration) timer.Ticker { return idleTicker{c: make(chan time.Time)} }

var openedAt = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

func seed(t *testing.T, store *memstore.Store, name string) (domain.Workout, []domain.Exercise) {
	t.Helper()
	ctx := context.Background()
	w := domain.Workout{Name: name}
	if _, err := store.Workouts().Create(ctx, &w); err != nil {
		t.Fatal(err)
	}
	var exs []domain.Exercise
	for i, ex := range []domain.Exercise{
		{Name: "Push Up", Sets: 3, Rest: "60s"},
		{Name: "Plank", Sets: 2, Rest: "0"},
	} {
		ex.WorkoutID = w.ID
		ex.ExerciseOrder = i + 1
		if _, err := store.Exercises().Create(ctx, &ex); err != nil {
			t.Fatal(err)
		}
		exs = append(exs, ex)
	}
	return w, exs
}

func newTestManager(store *memstore.Store) *Manager {
	return NewManager(store.Workouts(), store.Exercises(), store.Progress(), Options{
		PersistTimeout: time.Second,
		Tick:           time.Second,
		Ticker:         newIdleTicker,
		Now:            func() time.Time { return openedAt },
	}, logger.Nop())
}

func TestOpenLoadsTodaysProgress(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	w, exs := seed(t, store, "Upper")

	day := domain.DateOf(openedAt)
	_ = store.Progress().Upsert(ctx, domain.ProgressEntry{ExerciseID: exs[0].ID, SessionDate: day, CompletedSets: []int{1}})
	_ = store.Progress().Upsert(ctx, domain.ProgressEntry{ExerciseID: exs[1].ID, SessionDate: "2026-10-15", CompletedSets: []int{0}})

	m := newTestManager(store)
	defer m.Close(ctx)

	s, err := m.Open(ctx, w.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Date != day || s.ID == "" || len(s.Exercises) != 2 {
		t.Fatalf("session = %+v", s)
	}
	if e, _ := s.Progress.Entry(exs[0].ID); !e.Has(1) {
		t.Errorf("today's progress not loaded: %+v", e)
	}
	if e, _ := s.Progress.Entry(exs[1].ID); len(e.CompletedSets) != 0 {
		t.Errorf("yesterday's progress leaked: %+v", e)
	}

	active, err := m.Active()
	if err != nil || active != s {
		t.Fatalf("Active = %v, %v", active, err)
	}
}

func TestOpenUnknownWorkout(t *testing.T) {
	m := newTestManager(memstore.New())
	if _, err := m.Open(context.Background(), "missing"); !errors.Is(err, ErrWorkoutNotFound) {
		t.Fatalf("err = %v, want ErrWorkoutNotFound", err)
	}
	if _, err := m.Active(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Active err = %v, want ErrNoActiveSession", err)
	}
}

func TestOpenReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	first, firstExs := seed(t, store, "A")
	second, _ := seed(t, store, "B")
	m := newTestManager(store)
	defer m.Close(ctx)

	s1, err := m.Open(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	tm, err := s1.Timer(firstExs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	tm.Toggle("60s")
	s1.Progress.ToggleSet(firstExs[0].ID, 2)

	s2, err := m.Open(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if active, _ := m.Active(); active != s2 {
		t.Fatal("second session not active")
	}
	if _, err := s1.Timer(firstExs[0].ID); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("timer on closed session err = %v", err)
	}
	if _, ok := s1.Progress.ToggleSet(firstExs[0].ID, 0); ok {
		t.Fatal("closed session accepted a toggle")
	}
	// The toggle made before the switch was flushed on teardown.
	entries, _ := store.Progress().ListByDate(ctx, []string{firstExs[0].ID}, s1.Date)
	if len(entries) != 1 || !entries[0].Has(2) {
		t.Fatalf("stored entries = %+v", entries)
	}
}

func TestSessionTimers(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	w, exs := seed(t, store, "T")
	m := newTestManager(store)
	defer m.Close(ctx)
	s, err := m.Open(ctx, w.ID)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := s.TimerSnapshot(exs[0].ID)
	if err != nil || snap.State != timer.Idle {
		t.Fatalf("untouched timer = %+v, %v", snap, err)
	}
	if snap, _ = s.ToggleTimer(exs[0].ID); snap.State != timer.Running || snap.Remaining != 60 {
		t.Fatalf("toggle push up = %+v", snap)
	}
	if snap, _ = s.ToggleTimer(exs[1].ID); snap.State != timer.Idle {
		t.Fatalf("toggle plank with rest 0 = %+v, want idle", snap)
	}
	if snap, _ = s.ToggleTimer(exs[0].ID); snap.State != timer.Paused {
		t.Fatalf("second toggle = %+v, want paused", snap)
	}
	if _, err := s.ToggleTimer("nope"); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("unknown exercise err = %v", err)
	}
	if _, err := s.TimerSnapshot("nope"); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("unknown exercise snapshot err = %v", err)
	}
}

func TestCloseIfWorkout(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	w, _ := seed(t, store, "C")
	m := newTestManager(store)
	if _, err := m.Open(ctx, w.ID); err != nil {
		t.Fatal(err)
	}

	if closed, _ := m.CloseIfWorkout(ctx, "other"); closed {
		t.Fatal("closed session of another workout")
	}
	closed, err := m.CloseIfWorkout(ctx, w.ID)
	if !closed || err != nil {
		t.Fatalf("CloseIfWorkout = %v, %v", closed, err)
	}
	if _, err := m.Active(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Active err = %v", err)
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close with no session: %v", err)
	}
}

func TestCloseRejectsMutationsWhenFlushTimesOut(t *testing.T) {
	store := memstore.New()
	w, exs := seed(t, store, "D")
	repo := newRecordingRepo()
	repo.gate = make(chan struct{})
	m := NewManager(store.Workouts(), store.Exercises(), repo, Options{
		PersistTimeout: 5 * time.Second,
		Tick:           time.Second,
		Ticker:         newIdleTicker,
		Now:            func() time.Time { return openedAt },
	}, logger.Nop())

	s, err := m.Open(context.Background(), w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Progress.ToggleSet(exs[0].ID, 0); !ok {
		t.Fatal("ToggleSet rejected")
	}

	// The upsert is held at the gate, so the flush cannot finish in time.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	closed, err := m.CloseIfWorkout(ctx, w.ID)
	if !closed || !errors.Is(err, context.Canceled) {
		t.Fatalf("CloseIfWorkout = %v, %v; want true, context.Canceled", closed, err)
	}
	if _, ok := s.Progress.ToggleSet(exs[0].ID, 1); ok {
		t.Fatal("ToggleSet accepted after the session closed")
	}
	if err := s.Progress.Reset(context.Background()); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Reset after close err = %v", err)
	}

	close(repo.gate)
	flush(t, s.Progress)
	if n := repo.callCount(); n != 1 {
		t.Fatalf("upserts = %d, want only the one issued before close", n)
	}
}
