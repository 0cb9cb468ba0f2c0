package sqlstore

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"alcyxob/workout-tracker/internal/domain"
)

type workoutModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:200;not null"`
	SourceKey string    `gorm:"size:1024"`
	CreatedAt time.Time `gorm:"index"`
}

func (workoutModel) TableName() string { return "workouts" }

func (m workoutModel) toDomain() domain.Workout {
	return domain.Workout{ID: m.ID, Name: m.Name, SourceKey: m.SourceKey, CreatedAt: m.CreatedAt}
}

type exerciseModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	WorkoutID     string `gorm:"size:36;not null;index:idx_exercise_workout_order,priority:1"`
	ExerciseOrder int    `gorm:"not null;index:idx_exercise_workout_order,priority:2"`
	Name          string `gorm:"size:100;not null"`
	Description   string `gorm:"size:500"`
	Reps          string `gorm:"size:100"`
	Speed         string `gorm:"size:200"`
	Rest          string `gorm:"size:100"`
	Sets          int    `gorm:"not null;default:1"`
	VideoURL      string `gorm:"size:500"`
}

func (exerciseModel) TableName() string { return "exercises" }

func newExerciseModel(e domain.Exercise) exerciseModel {
	return exerciseModel{
		ID:            e.ID,
		WorkoutID:     e.WorkoutID,
		ExerciseOrder: e.ExerciseOrder,
		Name:          e.Name,
		Description:   e.Description,
		Reps:          e.Reps,
		Speed:         e.Speed,
		Rest:          e.Rest,
		Sets:          e.Sets,
		VideoURL:      e.VideoURL,
	}
}

func (m exerciseModel) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:            m.ID,
		WorkoutID:     m.WorkoutID,
		ExerciseOrder: m.ExerciseOrder,
		Name:          m.Name,
		Description:   m.Description,
		Reps:          m.Reps,
		Speed:         m.Speed,
		Rest:          m.Rest,
		Sets:          m.Sets,
		VideoURL:      m.VideoURL,
	}
}

type progressModel struct {
	ID            uint           `gorm:"primaryKey"`
	ExerciseID    string         `gorm:"size:36;not null;uniqueIndex:idx_progress_exercise_date,priority:1"`
	SessionDate   string         `gorm:"size:10;not null;uniqueIndex:idx_progress_exercise_date,priority:2"`
	CompletedSets datatypes.JSON `gorm:"not null"`
	Notes         string         `gorm:"type:text"`
}

func (progressModel) TableName() string { return "exercise_progress" }

func newProgressModel(p domain.ProgressEntry) (progressModel, error) {
	sets := p.CompletedSets
	if sets == nil {
		sets = []int{}
	}
	raw, err := json.Marshal(sets)
	if err != nil {
		return progressModel{}, err
	}
	return progressModel{
		ExerciseID:    p.ExerciseID,
		SessionDate:   p.SessionDate.String(),
		CompletedSets: datatypes.JSON(raw),
		Notes:         p.Notes,
	}, nil
}

func (m progressModel) toDomain() (domain.ProgressEntry, error) {
	p := domain.ProgressEntry{
		ExerciseID:    m.ExerciseID,
		SessionDate:   domain.SessionDate(m.SessionDate),
		CompletedSets: []int{},
		Notes:         m.Notes,
	}
	if len(m.CompletedSets) > 0 {
		if err := json.Unmarshal(m.CompletedSets, &p.CompletedSets); err != nil {
			return domain.ProgressEntry{}, err
		}
	}
	return p.Normalize(), nil
}
