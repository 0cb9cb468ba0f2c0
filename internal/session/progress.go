package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

const defaultPersistTimeout = 10 * time.Second

// ProgressStore owns the progress of one workout on one session date.
//
// Mutations are applied to the in-memory map and returned immediately; the
// changed entry is then upserted in the background. Writes for one exercise
// are serialized and always carry the entry as it is when the write starts,
// so the remote copy converges on the latest local value whatever the order
// in which earlier requests finish. Failed writes are logged and never
// retried; they only make Synced report false.
type ProgressStore struct {
	repo    repository.ProgressRepository
	date    domain.SessionDate
	order   []string       // exercise IDs in workout order
	sets    map[string]int // exercise ID -> number of sets
	total   int
	timeout time.Duration
	log     *logger.Logger

	mu       sync.Mutex
	entries  map[string]domain.ProgressEntry
	versions map[string]uint64 // bumped on every local mutation
	written  map[string]uint64 // latest version known to be stored
	keyLocks map[string]*sync.Mutex
	closed   bool
	pending  int             // background writes not yet finished
	drained  []chan struct{} // closed when pending drops to zero
}

// NewProgressStore creates a store for exercises on date, seeded with
// entries previously read from repo. Entries of unknown exercises or other
// dates are dropped. A non-positive timeout selects the default.
func NewProgressStore(
	repo repository.ProgressRepository,
	exercises []domain.Exercise,
	date domain.SessionDate,
	initial []domain.ProgressEntry,
	timeout time.Duration,
	log *logger.Logger,
) *ProgressStore {
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	s := &ProgressStore{
		repo:     repo,
		date:     date,
		order:    make([]string, 0, len(exercises)),
		sets:     make(map[string]int, len(exercises)),
		total:    domain.TotalSets(exercises),
		timeout:  timeout,
		log:      log,
		entries:  make(map[string]domain.ProgressEntry),
		versions: make(map[string]uint64),
		written:  make(map[string]uint64),
		keyLocks: make(map[string]*sync.Mutex),
	}
	for _, ex := range exercises {
		s.order = append(s.order, ex.ID)
		s.sets[ex.ID] = ex.Sets
	}
	for _, p := range initial {
		sets, ok := s.sets[p.ExerciseID]
		if !ok || p.SessionDate != date {
			continue
		}
		p = p.Normalize()
		kept := p.CompletedSets[:0]
		for _, i := range p.CompletedSets {
			if i < sets {
				kept = append(kept, i)
			}
		}
		p.CompletedSets = kept
		s.entries[p.ExerciseID] = p
	}
	return s
}

// Date returns the session date the store writes under.
func (s *ProgressStore) Date() domain.SessionDate { return s.date }

// ToggleSet flips completion of set setIndex of an exercise. It returns false,
// and changes nothing, for an unknown exercise or an index outside
// [0, sets); the entry returned for a rejected index is the current one.
func (s *ProgressStore) ToggleSet(exerciseID string, setIndex int) (domain.ProgressEntry, bool) {
	return s.mutate(exerciseID, func(p domain.ProgressEntry) (domain.ProgressEntry, bool) {
		if setIndex < 0 || setIndex >= s.sets[exerciseID] {
			return p, false
		}
		return p.Toggle(setIndex), true
	})
}

// UpdateNotes replaces the notes of an exercise.
func (s *ProgressStore) UpdateNotes(exerciseID, notes string) (domain.ProgressEntry, bool) {
	return s.mutate(exerciseID, func(p domain.ProgressEntry) (domain.ProgressEntry, bool) {
		p.Notes = notes
		return p, true
	})
}

func (s *ProgressStore) mutate(exerciseID string, apply func(domain.ProgressEntry) (domain.ProgressEntry, bool)) (domain.ProgressEntry, bool) {
	s.mu.Lock()
	if _, known := s.sets[exerciseID]; !known || s.closed {
		s.mu.Unlock()
		return domain.ProgressEntry{}, false
	}
	current := s.entryLocked(exerciseID)
	next, ok := apply(current)
	if !ok {
		s.mu.Unlock()
		return current, false
	}
	s.entries[exerciseID] = next
	s.versions[exerciseID]++
	s.pending++
	s.mu.Unlock()

	go s.persistAsync(exerciseID)
	return next.Clone(), true
}

func (s *ProgressStore) persistAsync(exerciseID string) {
	defer s.done()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.persist(ctx, exerciseID); err != nil {
		s.log.Warn("progress not synced",
			"exercise_id", exerciseID,
			"session_date", s.date,
			"error", err)
	}
}

// persist upserts the current entry of exerciseID unless a newer or equal
// version has already been stored.
func (s *ProgressStore) persist(ctx context.Context, exerciseID string) error {
	lock := s.keyLock(exerciseID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	version := s.versions[exerciseID]
	if s.written[exerciseID] >= version {
		s.mu.Unlock()
		return nil
	}
	entry := s.entryLocked(exerciseID)
	s.mu.Unlock()

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return err
	}

	s.mu.Lock()
	if version > s.written[exerciseID] {
		s.written[exerciseID] = version
	}
	s.mu.Unlock()
	return nil
}

func (s *ProgressStore) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		for _, ch := range s.drained {
			close(ch)
		}
		s.drained = nil
	}
}

func (s *ProgressStore) keyLock(exerciseID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.keyLocks[exerciseID]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[exerciseID] = l
	}
	return l
}

// entryLocked returns a copy of the entry for exerciseID, or the empty entry.
func (s *ProgressStore) entryLocked(exerciseID string) domain.ProgressEntry {
	if p, ok := s.entries[exerciseID]; ok {
		return p.Clone()
	}
	return domain.NewProgressEntry(exerciseID, s.date)
}

// Reset clears the progress of every exercise and upserts the empty entries,
// one exercise at a time. Failures are logged and joined into the returned
// error; they do not stop the remaining exercises. A closed store returns
// ErrNoActiveSession and writes nothing.
func (s *ProgressStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	for _, id := range s.order {
		s.versions[id]++
	}
	s.entries = make(map[string]domain.ProgressEntry)
	s.mu.Unlock()

	var errs []error
	for _, id := range s.order {
		if err := s.persistWithTimeout(ctx, id); err != nil {
			s.log.Warn("progress reset not synced", "exercise_id", id, "session_date", s.date, "error", err)
			errs = append(errs, fmt.Errorf("reset %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (s *ProgressStore) persistWithTimeout(ctx context.Context, exerciseID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.persist(ctx, exerciseID)
}

// Entry returns the current entry of an exercise, empty when nothing has
// been recorded. ok is false for an exercise outside the workout.
func (s *ProgressStore) Entry(exerciseID string) (domain.ProgressEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.sets[exerciseID]; !known {
		return domain.ProgressEntry{}, false
	}
	return s.entryLocked(exerciseID), true
}

// Snapshot returns a copy of every recorded entry keyed by exercise ID.
func (s *ProgressStore) Snapshot() map[string]domain.ProgressEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.ProgressEntry, len(s.entries))
	for id, p := range s.entries {
		out[id] = p.Clone()
	}
	return out
}

// Synced reports whether every local change has reached the store.
func (s *ProgressStore) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.versions {
		if s.written[id] < v {
			return false
		}
	}
	return true
}

// Totals returns the number of completed sets and the number of sets in the
// workout.
func (s *ProgressStore) Totals() (completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.entries {
		completed += len(p.CompletedSets)
	}
	return completed, s.total
}

// Percent returns completed sets as a percentage of all sets, 0 for a workout
// without sets.
func (s *ProgressStore) Percent() float64 {
	completed, total := s.Totals()
	if total == 0 {
		return 0
	}
	return float64(completed) * 100 / float64(total)
}

// Flush waits until every background write has finished or ctx is done.
func (s *ProgressStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == 0 {
		s.mu.Unlock()
		return nil
	}
	done := make(chan struct{})
	s.drained = append(s.drained, done)
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further mutations and waits for background writes.
func (s *ProgressStore) Close() {
	s.stop()
	_ = s.Flush(context.Background())
}

// stop marks the store closed without waiting for writes in flight.
func (s *ProgressStore) stop() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
