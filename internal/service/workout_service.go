package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
)

// DeleteReport summarizes a cascading workout delete.
type DeleteReport struct {
	WorkoutID        string          `json:"workout_id"`
	ExercisesDeleted int             `json:"exercises_deleted"`
	ProgressCleared  int             `json:"progress_cleared"` // exercises whose progress rows were removed
	SourceDeleted    bool            `json:"source_deleted"`
	Failures         []DeleteFailure `json:"failures,omitempty"`
}

// DeleteFailure is one step of the cascade that did not succeed.
type DeleteFailure struct {
	Resource string `json:"resource"` // "exercise_progress", "exercises" or "source"
	ID       string `json:"id"`
	Reason   string `json:"reason"`
	Err      error  `json:"-"`
}

// WorkoutService reads and deletes imported workouts.
type WorkoutService interface {
	ListWorkouts(ctx context.Context) ([]domain.WorkoutSummary, error)
	GetWorkout(ctx context.Context, id string) (*domain.Workout, []domain.Exercise, error)
	DeleteWorkout(ctx context.Context, id string) (*DeleteReport, error)
	SourceURL(ctx context.Context, id string) (string, error)
}

type workoutService struct {
	workoutRepo   repository.WorkoutRepository
	exerciseRepo  repository.ExerciseRepository
	progressRepo  repository.ProgressRepository
	files         storage.FileStorage // may be nil
	presignExpiry time.Duration
	log           *logger.Logger
}

// NewWorkoutService creates a new instance of workoutService. files may be nil.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	progressRepo repository.ProgressRepository,
	files storage.FileStorage,
	presignExpiry time.Duration,
	log *logger.Logger,
) WorkoutService {
	return &workoutService{
		workoutRepo:   workoutRepo,
		exerciseRepo:  exerciseRepo,
		progressRepo:  progressRepo,
		files:         files,
		presignExpiry: presignExpiry,
		log:           log,
	}
}

// ListWorkouts returns every workout, newest first, with its exercise count.
func (s *workoutService) ListWorkouts(ctx context.Context) ([]domain.WorkoutSummary, error) {
	workouts, err := s.workoutRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	ids := make([]string, len(workouts))
	for i, w := range workouts {
		ids[i] = w.ID
	}
	counts, err := s.exerciseRepo.CountByWorkout(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count exercises: %w", err)
	}

	out := make([]domain.WorkoutSummary, len(workouts))
	for i, w := range workouts {
		out[i] = domain.WorkoutSummary{Workout: w, ExerciseCount: counts[w.ID]}
	}
	return out, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, id string) (*domain.Workout, []domain.Exercise, error) {
	workout, err := s.getWorkout(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	exercises, err := s.exerciseRepo.ListByWorkout(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list exercises: %w", err)
	}
	return workout, exercises, nil
}

func (s *workoutService) getWorkout(ctx context.Context, id string) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return workout, nil
}

// DeleteWorkout removes a workout after its progress entries, exercises and
// archived source file. Failures of those steps are logged and reported but
// do not stop the cascade; only failing to delete the workout row itself
// returns an error.
func (s *workoutService) DeleteWorkout(ctx context.Context, id string) (*DeleteReport, error) {
	workout, err := s.getWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exerciseRepo.ListByWorkout(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	log := s.log.With("workout_id", id)
	report := &DeleteReport{WorkoutID: id}
	fail := func(resource, resourceID string, err error) {
		log.Warn("delete step failed", "resource", resource, "id", resourceID, "error", err)
		report.Failures = append(report.Failures, DeleteFailure{
			Resource: resource,
			ID:       resourceID,
			Reason:   err.Error(),
			Err:      err,
		})
	}

	for _, ex := range exercises {
		if err := s.progressRepo.DeleteByExercise(ctx, ex.ID); err != nil {
			fail("exercise_progress", ex.ID, err)
			continue
		}
		report.ProgressCleared++
	}
	for _, ex := range exercises {
		if err := s.exerciseRepo.Delete(ctx, ex.ID); err != nil {
			fail("exercises", ex.ID, err)
			continue
		}
		report.ExercisesDeleted++
	}
	if workout.SourceKey != "" && s.files != nil {
		if err := s.files.DeleteObject(ctx, workout.SourceKey); err != nil {
			fail("source", workout.SourceKey, err)
		} else {
			report.SourceDeleted = true
		}
	}

	if err := s.workoutRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return report, ErrWorkoutNotFound
		}
		return report, fmt.Errorf("delete workout: %w", err)
	}

	log.Info("workout deleted",
		"exercises_deleted", report.ExercisesDeleted,
		"progress_cleared", report.ProgressCleared,
		"failures", len(report.Failures))
	return report, nil
}

// SourceURL returns a presigned download link for the workout's archived
// spreadsheet.
func (s *workoutService) SourceURL(ctx context.Context, id string) (string, error) {
	workout, err := s.getWorkout(ctx, id)
	if err != nil {
		return "", err
	}
	if workout.SourceKey == "" || s.files == nil {
		return "", ErrNoSource
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, workout.SourceKey, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign source: %w", err)
	}
	return url, nil
}
