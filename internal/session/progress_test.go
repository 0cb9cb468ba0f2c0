package session

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
)

const today domain.SessionDate = "2026-10-16"

var errRemote = errors.New("remote unavailable")

// recordingRepo is a ProgressRepository that records upserts. Upserts for
// exercises in fail return errRemote. When gate is set every upsert waits
// for a token on it.
type recordingRepo struct {
	mu     sync.Mutex
	stored map[string]domain.ProgressEntry
	calls  []domain.ProgressEntry
	fail   map[string]bool
	gate   chan struct{}
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{stored: map[string]domain.ProgressEntry{}, fail: map[string]bool{}}
}

func (r *recordingRepo) Upsert(ctx context.Context, p domain.ProgressEntry) error {
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, p.Clone())
	if r.fail[p.ExerciseID] {
		return errRemote
	}
	r.stored[p.ExerciseID] = p.Clone()
	return nil
}

func (r *recordingRepo) ListByDate(_ context.Context, ids []string, date domain.SessionDate) ([]domain.ProgressEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProgressEntry
	for _, id := range ids {
		if p, ok := r.stored[id]; ok && p.SessionDate == date {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *recordingRepo) DeleteByExercise(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stored, id)
	return nil
}

func (r *recordingRepo) setFail(id string, fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[id] = fail
}

func (r *recordingRepo) storedEntry(id string) (domain.ProgressEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.stored[id]
	return p, ok
}

func (r *recordingRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

var testExercises = []domain.Exercise{
	{ID: "push", ExerciseOrder: 1, Name: "Push Up", Sets: 3, Rest: "60s"},
	{ID: "squat", ExerciseOrder: 2, Name: "Squat", Sets: 4, Rest: "0"},
}

func newTestStore(repo *recordingRepo) *ProgressStore {
	return NewProgressStore(repo, testExercises, today, nil, time.Second, logger.Nop())
}

func flush(t *testing.T, s *ProgressStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestToggleTwiceClearsSet(t *testing.T) {
	repo := newRecordingRepo()
	s := newTestStore(repo)
	defer s.Close()

	first, ok := s.ToggleSet("push", 0)
	if !ok || !reflect.DeepEqual(first.CompletedSets, []int{0}) {
		t.Fatalf("first toggle = %+v, %v", first, ok)
	}
	second, ok := s.ToggleSet("push", 0)
	if !ok || len(second.CompletedSets) != 0 {
		t.Fatalf("second toggle = %+v, %v", second, ok)
	}
	if second.SessionDate != today || second.ExerciseID != "push" {
		t.Fatalf("entry key = %s/%s", second.ExerciseID, second.SessionDate)
	}

	flush(t, s)
	stored, ok := repo.storedEntry("push")
	if !ok || len(stored.CompletedSets) != 0 {
		t.Fatalf("stored = %+v, want empty sets", stored)
	}
	if !s.Synced() {
		t.Fatal("Synced() = false after successful writes")
	}
}

func TestToggleOutOfRangeIsIgnored(t *testing.T) {
	repo := newRecordingRepo()
	s := newTestStore(repo)
	defer s.Close()

	for _, tc := range []struct {
		id  string
		idx int
	}{
		{"push", 3},
		{"push", -1},
		{"squat", 4},
		{"unknown", 0},
	} {
		if _, ok := s.ToggleSet(tc.id, tc.idx); ok {
			t.Errorf("ToggleSet(%q, %d) accepted", tc.id, tc.idx)
		}
	}
	if _, ok := s.UpdateNotes("unknown", "x"); ok {
		t.Error("UpdateNotes on unknown exercise accepted")
	}

	flush(t, s)
	if n := repo.callCount(); n != 0 {
		t.Fatalf("%d upserts issued for ignored toggles", n)
	}
	if len(s.Snapshot()) != 0 {
		t.Fatalf("Snapshot = %v, want empty", s.Snapshot())
	}
}

func TestLocalStateIndependentOfLatency(t *testing.T) {
	repo := newRecordingRepo()
	repo.gate = make(chan struct{})
	s := newTestStore(repo)
	defer s.Close()

	// Every write is held back while the toggles are applied.
	for _, i := range []int{0, 1, 0, 2, 1, 1} {
		if _, ok := s.ToggleSet("push", i); !ok {
			t.Fatalf("ToggleSet(push, %d) rejected", i)
		}
	}
	entry, _ := s.Entry("push")
	if want := []int{1, 2}; !reflect.DeepEqual(entry.CompletedSets, want) {
		t.Fatalf("local sets = %v, want %v", entry.CompletedSets, want)
	}
	if s.Synced() {
		t.Fatal("Synced() = true with writes in flight")
	}

	go func() {
		for i := 0; i < 6; i++ {
			select {
			case repo.gate <- struct{}{}:
			case <-time.After(200 * time.Millisecond):
				return // later writes were coalesced
			}
		}
	}()
	flush(t, s)

	stored, ok := repo.storedEntry("push")
	if !ok || !reflect.DeepEqual(stored.CompletedSets, []int{1, 2}) {
		t.Fatalf("stored = %+v, want the latest local entry", stored)
	}
	if !s.Synced() {
		t.Fatal("Synced() = false after all writes completed")
	}
}

func TestSyncedTracksFailures(t *testing.T) {
	repo := newRecordingRepo()
	repo.setFail("push", true)
	s := newTestStore(repo)
	defer s.Close()

	s.ToggleSet("push", 0)
	s.ToggleSet("squat", 1)
	flush(t, s)
	if s.Synced() {
		t.Fatal("Synced() = true after a failed write")
	}
	entry, _ := s.Entry("push")
	if !entry.Has(0) {
		t.Fatal("failed write rolled back local state")
	}

	// A successful write of another key does not clear the failure.
	s.UpdateNotes("squat", "deep")
	flush(t, s)
	if s.Synced() {
		t.Fatal("Synced() = true while push is still unsynced")
	}

	repo.setFail("push", false)
	s.UpdateNotes("push", "retry by editing")
	flush(t, s)
	if !s.Synced() {
		t.Fatal("Synced() = false after the failed key was written")
	}
	stored, _ := repo.storedEntry("push")
	if !stored.Has(0) || stored.Notes != "retry by editing" {
		t.Fatalf("stored = %+v, want full snapshot", stored)
	}
}

func TestResetUpsertsEveryExerciseAndContinues(t *testing.T) {
	repo := newRecordingRepo()
	s := newTestStore(repo)
	defer s.Close()

	s.ToggleSet("push", 1)
	s.UpdateNotes("squat", "heavy")
	flush(t, s)

	repo.setFail("push", true)
	err := s.Reset(context.Background())
	if err == nil || !errors.Is(err, errRemote) || !strings.Contains(err.Error(), "push") {
		t.Fatalf("Reset err = %v, want joined failure for push", err)
	}

	stored, _ := repo.storedEntry("squat")
	if len(stored.CompletedSets) != 0 || stored.Notes != "" {
		t.Fatalf("squat not reset remotely: %+v", stored)
	}
	if len(s.Snapshot()) != 0 {
		t.Fatalf("Snapshot after reset = %v", s.Snapshot())
	}
	if completed, _ := s.Totals(); completed != 0 {
		t.Fatalf("completed after reset = %d", completed)
	}
	if s.Synced() {
		t.Fatal("Synced() = true after a failed reset write")
	}
}

func TestInitialEntriesAreFiltered(t *testing.T) {
	initial := []domain.ProgressEntry{
		{ExerciseID: "push", SessionDate: today, CompletedSets: []int{2, 0, 7}, Notes: "ok"},
		{ExerciseID: "squat", SessionDate: "2026-10-15", CompletedSets: []int{1}},
		{ExerciseID: "other", SessionDate: today, CompletedSets: []int{0}},
	}
	s := NewProgressStore(newRecordingRepo(), testExercises, today, initial, 0, logger.Nop())
	defer s.Close()

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot = %v, want only push", snap)
	}
	if got := snap["push"].CompletedSets; !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("push sets = %v, want [0 2]", got)
	}
	if !s.Synced() {
		t.Fatal("loaded state should count as synced")
	}
}

func TestTotalsAndPercent(t *testing.T) {
	s := newTestStore(newRecordingRepo())
	defer s.Close()

	if s.Percent() != 0 {
		t.Fatalf("Percent = %v, want 0", s.Percent())
	}
	s.ToggleSet("push", 0)
	s.ToggleSet("push", 1)
	s.ToggleSet("squat", 3)
	s.ToggleSet("squat", 2)
	s.ToggleSet("squat", 2)

	completed, total := s.Totals()
	if completed != 3 || total != 7 {
		t.Fatalf("Totals = %d/%d, want 3/7", completed, total)
	}
	if got := s.Percent(); got != 300.0/7 {
		t.Fatalf("Percent = %v", got)
	}

	empty := NewProgressStore(newRecordingRepo(), nil, today, nil, 0, logger.Nop())
	if empty.Percent() != 0 {
		t.Fatal("Percent of an empty workout should be 0")
	}
}

func TestClosedStoreRejectsMutations(t *testing.T) {
	repo := newRecordingRepo()
	s := newTestStore(repo)
	s.Close()
	if _, ok := s.ToggleSet("push", 0); ok {
		t.Fatal("ToggleSet accepted after Close")
	}
	if _, ok := s.UpdateNotes("push", "late"); ok {
		t.Fatal("UpdateNotes accepted after Close")
	}
	if err := s.Reset(context.Background()); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Reset after Close err = %v, want ErrNoActiveSession", err)
	}
	if n := repo.callCount(); n != 0 {
		t.Fatalf("closed store wrote %d entries", n)
	}
}
