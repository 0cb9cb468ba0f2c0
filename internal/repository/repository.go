package repository

import (
	"context"

	"alcyxob/workout-tracker/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrInvalidInput = RepositoryError("invalid input")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// WorkoutRepository stores workouts.
type WorkoutRepository interface {
	// Create assigns the ID and creation time and inserts w.
	Create(ctx context.Context, w *domain.Workout) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	// List returns every workout, newest first.
	List(ctx context.Context) ([]domain.Workout, error)
	SetSourceKey(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
}

// ExerciseRepository stores the exercises of a workout.
type ExerciseRepository interface {
	Create(ctx context.Context, e *domain.Exercise) (string, error)
	// ListByWorkout returns the exercises of a workout ordered by ExerciseOrder.
	ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error)
	// CountByWorkout returns the number of exercises per workout ID. Workouts
	// without exercises are absent from the map.
	CountByWorkout(ctx context.Context, workoutIDs []string) (map[string]int, error)
	Delete(ctx context.Context, id string) error
}

// ProgressRepository stores one ProgressEntry per (exercise, session date).
type ProgressRepository interface {
	// Upsert writes the full entry, replacing any entry with the same key.
	Upsert(ctx context.Context, p domain.ProgressEntry) error
	// ListByDate returns the entries of the given exercises on date.
	ListByDate(ctx context.Context, exerciseIDs []string, date domain.SessionDate) ([]domain.ProgressEntry, error)
	// DeleteByExercise removes the entries of an exercise across all dates.
	DeleteByExercise(ctx context.Context, exerciseID string) error
}
