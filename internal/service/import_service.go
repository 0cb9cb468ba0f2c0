package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/ingest"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"alcyxob/workout-tracker/internal/textsan"
)

// DefaultWorkoutName is used when the requested name sanitizes to nothing.
const DefaultWorkoutName = "Imported Workout"

// ImportResult is the outcome of one import. Exercises holds exactly the rows
// that were persisted, in order; Failed holds the rest.
type ImportResult struct {
	Workout   domain.Workout    `json:"workout"`
	Exercises []domain.Exercise `json:"exercises"`
	Failed    []RowFailure      `json:"failed,omitempty"`
}

// RowFailure describes an exercise that could not be persisted.
type RowFailure struct {
	ExerciseOrder int    `json:"exercise_order"`
	Name          string `json:"name"`
	Reason        string `json:"reason"`
	Err           error  `json:"-"`
}

// ImportService turns spreadsheets into persisted workouts.
type ImportService interface {
	// Import creates a workout named workoutName and persists rows under it,
	// continuing past rows that fail.
	Import(ctx context.Context, workoutName string, rows []domain.Exercise) (*ImportResult, error)
	// ImportFile decodes r, maps its rows and imports them. A blank workoutName
	// defaults to the file's base name.
	ImportFile(ctx context.Context, fileName, workoutName string, r io.Reader) (*ImportResult, error)
	// Preview decodes and maps r without persisting anything.
	Preview(ctx context.Context, fileName string, r io.Reader) ([]domain.Exercise, error)
}

// ImportOptions tunes an ImportService. Zero values select defaults.
type ImportOptions struct {
	Layout         ingest.Layout
	PersistTimeout time.Duration
	MaxFileSize    int64
}

const (
	defaultPersistTimeout = 10 * time.Second
	defaultMaxFileSize    = 10 << 20
)

type importService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	files        storage.FileStorage // nil disables archiving
	opts         ImportOptions
	log          *logger.Logger
}

// NewImportService creates a new instance of importService. files may be nil.
func NewImportService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	files storage.FileStorage,
	opts ImportOptions,
	log *logger.Logger,
) ImportService {
	if opts.Layout.VideoLinkColumns == nil {
		opts.Layout = ingest.DefaultLayout()
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	return &importService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		files:        files,
		opts:         opts,
		log:          log,
	}
}

func (s *importService) Import(ctx context.Context, workoutName string, rows []domain.Exercise) (*ImportResult, error) {
	name := strings.TrimSpace(textsan.Truncate(textsan.Sanitize(strings.TrimSpace(workoutName)), domain.MaxWorkoutNameLen))
	if name == "" {
		name = DefaultWorkoutName
	}

	workout := &domain.Workout{Name: name}
	if _, err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	log := s.log.With("workout_id", workout.ID)

	result := &ImportResult{Workout: *workout, Exercises: make([]domain.Exercise, 0, len(rows))}
	for _, row := range rows {
		ex := textsan.SanitizeExercise(row)
		ex.ID = ""
		ex.WorkoutID = workout.ID

		if err := s.persistExercise(ctx, &ex); err != nil {
			log.Warn("exercise not imported", "exercise_order", ex.ExerciseOrder, "name", ex.Name, "error", err)
			result.Failed = append(result.Failed, RowFailure{
				ExerciseOrder: ex.ExerciseOrder,
				Name:          ex.Name,
				Reason:        err.Error(),
				Err:           err,
			})
			continue
		}
		result.Exercises = append(result.Exercises, ex)
	}

	log.Info("workout imported", "name", name, "imported", len(result.Exercises), "failed", len(result.Failed))
	return result, nil
}

func (s *importService) persistExercise(ctx context.Context, ex *domain.Exercise) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PersistTimeout)
	defer cancel()
	_, err := s.exerciseRepo.Create(ctx, ex)
	return err
}

func (s *importService) ImportFile(ctx context.Context, fileName, workoutName string, r io.Reader) (*ImportResult, error) {
	data, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}

	table, err := ingest.Ingest(ctx, fileName, bytes.NewReader(data), ingest.WithLinkColumns(s.opts.Layout.VideoLinkColumns...))
	if err != nil {
		return nil, err
	}
	rows := ingest.MapTable(table, s.opts.Layout)

	if strings.TrimSpace(workoutName) == "" {
		workoutName = ingest.BaseName(fileName)
	}
	result, err := s.Import(ctx, workoutName, rows)
	if err != nil {
		return nil, err
	}

	if s.files != nil {
		if key, ok := s.archive(ctx, result.Workout.ID, fileName, data); ok {
			result.Workout.SourceKey = key
		}
	}
	return result, nil
}

// archive stores the raw file next to the workout. Failures only lose the
// download link, so they are logged and swallowed.
func (s *importService) archive(ctx context.Context, workoutID, fileName string, data []byte) (string, bool) {
	key := storage.ImportKey(workoutID, fileName)
	err := s.files.PutObject(ctx, key, storage.ContentType(fileName), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		s.log.Warn("source file not archived", "workout_id", workoutID, "key", key, "error", err)
		return "", false
	}
	if err := s.workoutRepo.SetSourceKey(ctx, workoutID, key); err != nil {
		s.log.Warn("source key not recorded", "workout_id", workoutID, "key", key, "error", err)
		return "", false
	}
	return key, true
}

func (s *importService) Preview(ctx context.Context, fileName string, r io.Reader) ([]domain.Exercise, error) {
	data, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}
	table, err := ingest.Ingest(ctx, fileName, bytes.NewReader(data), ingest.WithLinkColumns(s.opts.Layout.VideoLinkColumns...))
	if err != nil {
		return nil, err
	}
	rows := ingest.MapTable(table, s.opts.Layout)
	for i := range rows {
		rows[i] = textsan.SanitizeExercise(rows[i])
	}
	return rows, nil
}

func (s *importService) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
