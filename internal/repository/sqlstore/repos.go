package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
)

// WorkoutRepository implements repository.WorkoutRepository.
type WorkoutRepository struct {
	db *gorm.DB
}

func NewWorkoutRepository(db *gorm.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func (r *WorkoutRepository) Create(ctx context.Context, w *domain.Workout) (string, error) {
	if w.Name == "" {
		return "", repository.ErrInvalidInput
	}
	w.ID = uuid.NewString()
	w.CreatedAt = time.Now().UTC()

	m := workoutModel{ID: w.ID, Name: w.Name, SourceKey: w.SourceKey, CreatedAt: w.CreatedAt}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("sqlstore: create workout: %w", err)
	}
	return w.ID, nil
}

func (r *WorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	var m workoutModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get workout %s: %w", id, err)
	}
	w := m.toDomain()
	return &w, nil
}

func (r *WorkoutRepository) List(ctx context.Context) ([]domain.Workout, error) {
	var rows []workoutModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: list workouts: %w", err)
	}
	out := make([]domain.Workout, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *WorkoutRepository) SetSourceKey(ctx context.Context, id, key string) error {
	res := r.db.WithContext(ctx).Model(&workoutModel{}).Where("id = ?", id).Update("source_key", key)
	if res.Error != nil {
		return fmt.Errorf("sqlstore: set source key %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WorkoutRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&workoutModel{})
	if res.Error != nil {
		return fmt.Errorf("sqlstore: delete workout %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ExerciseRepository implements repository.ExerciseRepository.
type ExerciseRepository struct {
	db *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) Create(ctx context.Context, e *domain.Exercise) (string, error) {
	if e.WorkoutID == "" || e.Name == "" {
		return "", repository.ErrInvalidInput
	}
	e.ID = uuid.NewString()

	m := newExerciseModel(*e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("sqlstore: create exercise: %w", err)
	}
	return e.ID, nil
}

func (r *ExerciseRepository) ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	var rows []exerciseModel
	err := r.db.WithContext(ctx).
		Where("workout_id = ?", workoutID).
		Order("exercise_order ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list exercises of %s: %w", workoutID, err)
	}
	out := make([]domain.Exercise, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ExerciseRepository) CountByWorkout(ctx context.Context, workoutIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(workoutIDs))
	if len(workoutIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		WorkoutID string
		Count     int
	}
	err := r.db.WithContext(ctx).
		Model(&exerciseModel{}).
		Select("workout_id, COUNT(*) AS count").
		Where("workout_id IN ?", workoutIDs).
		Group("workout_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: count exercises: %w", err)
	}
	for _, row := range rows {
		counts[row.WorkoutID] = row.Count
	}
	return counts, nil
}

func (r *ExerciseRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&exerciseModel{})
	if res.Error != nil {
		return fmt.Errorf("sqlstore: delete exercise %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ProgressRepository implements repository.ProgressRepository.
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Upsert inserts p or overwrites the sets and notes of the existing row with
// the same (exercise_id, session_date).
func (r *ProgressRepository) Upsert(ctx context.Context, p domain.ProgressEntry) error {
	if p.ExerciseID == "" || p.SessionDate == "" {
		return repository.ErrInvalidInput
	}
	m, err := newProgressModel(p)
	if err != nil {
		return fmt.Errorf("sqlstore: encode progress: %w", err)
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exercise_id"}, {Name: "session_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_sets", "notes"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("sqlstore: upsert progress %s/%s: %w", p.ExerciseID, p.SessionDate, err)
	}
	return nil
}

func (r *ProgressRepository) ListByDate(ctx context.Context, exerciseIDs []string, date domain.SessionDate) ([]domain.ProgressEntry, error) {
	out := []domain.ProgressEntry{}
	if len(exerciseIDs) == 0 {
		return out, nil
	}

	var rows []progressModel
	err := r.db.WithContext(ctx).
		Where("exercise_id IN ? AND session_date = ?", exerciseIDs, date.String()).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list progress for %s: %w", date, err)
	}
	for _, m := range rows {
		p, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: decode progress %s/%s: %w", m.ExerciseID, m.SessionDate, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProgressRepository) DeleteByExercise(ctx context.Context, exerciseID string) error {
	err := r.db.WithContext(ctx).Where("exercise_id = ?", exerciseID).Delete(&progressModel{}).Error
	if err != nil {
		return fmt.Errorf("sqlstore: delete progress of %s: %w", exerciseID, err)
	}
	return nil
}

var (
	_ repository.WorkoutRepository  = (*WorkoutRepository)(nil)
	_ repository.ExerciseRepository = (*ExerciseRepository)(nil)
	_ repository.ProgressRepository = (*ProgressRepository)(nil)
)
