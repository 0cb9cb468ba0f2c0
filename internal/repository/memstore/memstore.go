// Package memstore keeps workouts, exercises and progress in process memory.
// It backs the "memory" database driver and the tests of the packages above
// the repository layer.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
)

type progressKey struct {
	exerciseID string
	date       domain.SessionDate
}

// Store holds every resource behind one mutex.
type Store struct {
	mu        sync.Mutex
	workouts  map[string]domain.Workout
	exercises map[string]domain.Exercise
	progress  map[progressKey]domain.ProgressEntry
	now       func() time.Time
}

func New() *Store {
	return &Store{
		workouts:  map[string]domain.Workout{},
		exercises: map[string]domain.Exercise{},
		progress:  map[progressKey]domain.ProgressEntry{},
		now:       time.Now,
	}
}

func (s *Store) Workouts() repository.WorkoutRepository   { return workoutRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository { return exerciseRepo{s} }
func (s *Store) Progress() repository.ProgressRepository  { return progressRepo{s} }

// ProgressCount returns the number of stored progress entries.
func (s *Store) ProgressCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.progress)
}

type workoutRepo struct{ s *Store }

func (r workoutRepo) Create(ctx context.Context, w *domain.Workout) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if w.Name == "" {
		return "", repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w.ID = uuid.NewString()
	// Strictly increasing creation times keep List ordering stable.
	w.CreatedAt = r.s.now().UTC()
	for _, other := range r.s.workouts {
		if !w.CreatedAt.After(other.CreatedAt) {
			w.CreatedAt = other.CreatedAt.Add(time.Nanosecond)
		}
	}
	r.s.workouts[w.ID] = *w
	return w.ID, nil
}

func (r workoutRepo) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (r workoutRepo) List(ctx context.Context) ([]domain.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Workout, 0, len(r.s.workouts))
	for _, w := range r.s.workouts {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r workoutRepo) SetSourceKey(ctx context.Context, id, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.workouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.SourceKey = key
	r.s.workouts[id] = w
	return nil
}

func (r workoutRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.workouts, id)
	return nil
}

type exerciseRepo struct{ s *Store }

func (r exerciseRepo) Create(ctx context.Context, e *domain.Exercise) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.WorkoutID == "" || e.Name == "" {
		return "", repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.NewString()
	r.s.exercises[e.ID] = *e
	return e.ID, nil
}

func (r exerciseRepo) ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Exercise{}
	for _, e := range r.s.exercises {
		if e.WorkoutID == workoutID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseOrder < out[j].ExerciseOrder })
	return out, nil
}

func (r exerciseRepo) CountByWorkout(ctx context.Context, workoutIDs []string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(workoutIDs))
	for _, id := range workoutIDs {
		want[id] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, e := range r.s.exercises {
		if want[e.WorkoutID] {
			counts[e.WorkoutID]++
		}
	}
	return counts, nil
}

func (r exerciseRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, id)
	return nil
}

type progressRepo struct{ s *Store }

func (r progressRepo) Upsert(ctx context.Context, p domain.ProgressEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.ExerciseID == "" || p.SessionDate == "" {
		return repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.progress[progressKey{p.ExerciseID, p.SessionDate}] = p.Clone()
	return nil
}

func (r progressRepo) ListByDate(ctx context.Context, exerciseIDs []string, date domain.SessionDate) ([]domain.ProgressEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.ProgressEntry{}
	for _, id := range exerciseIDs {
		if p, ok := r.s.progress[progressKey{id, date}]; ok {
			out = append(out, p.Normalize())
		}
	}
	return out, nil
}

func (r progressRepo) DeleteByExercise(ctx context.Context, exerciseID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.progress {
		if k.exerciseID == exerciseID {
			delete(r.s.progress, k)
		}
	}
	return nil
}
