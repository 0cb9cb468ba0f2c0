package api

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/restinterval"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/timer"
)

// --- DTOs for API (Data Transfer Objects) ---

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID            string `json:"id,omitempty"`
	WorkoutID     string `json:"workoutId,omitempty"`
	ExerciseOrder int    `json:"exerciseOrder"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Reps          string `json:"reps,omitempty"`
	Speed         string `json:"speed,omitempty"`
	Rest          string `json:"rest,omitempty"`
	RestSeconds   int    `json:"restSeconds"`
	Sets          int    `json:"sets"`
	VideoURL      string `json:"videoUrl,omitempty"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:            ex.ID,
		WorkoutID:     ex.WorkoutID,
		ExerciseOrder: ex.ExerciseOrder,
		Name:          ex.Name,
		Description:   ex.Description,
		Reps:          ex.Reps,
		Speed:         ex.Speed,
		Rest:          ex.Rest,
		RestSeconds:   restinterval.ParseSeconds(ex.Rest),
		Sets:          ex.Sets,
		VideoURL:      ex.VideoURL,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(ex)
	}
	return responses
}

type WorkoutResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	HasSource     bool      `json:"hasSource"`
	ExerciseCount int       `json:"exerciseCount"`
}

func MapWorkoutToResponse(w domain.Workout, exerciseCount int) WorkoutResponse {
	return WorkoutResponse{
		ID:            w.ID,
		Name:          w.Name,
		CreatedAt:     w.CreatedAt,
		HasSource:     w.SourceKey != "",
		ExerciseCount: exerciseCount,
	}
}

type WorkoutDetailResponse struct {
	WorkoutResponse
	Exercises []ExerciseResponse `json:"exercises"`
}

// RowFailureResponse reports an exercise that was not imported.
type RowFailureResponse struct {
	ExerciseOrder int    `json:"exerciseOrder"`
	Name          string `json:"name"`
	Reason        string `json:"reason"`
}

type ImportResponse struct {
	Workout   WorkoutResponse      `json:"workout"`
	Exercises []ExerciseResponse   `json:"exercises"`
	Failed    []RowFailureResponse `json:"failed"`
}

func MapImportResultToResponse(res *service.ImportResult) ImportResponse {
	failed := make([]RowFailureResponse, len(res.Failed))
	for i, f := range res.Failed {
		failed[i] = RowFailureResponse{ExerciseOrder: f.ExerciseOrder, Name: f.Name, Reason: f.Reason}
	}
	return ImportResponse{
		Workout:   MapWorkoutToResponse(res.Workout, len(res.Exercises)),
		Exercises: MapExercisesToResponse(res.Exercises),
		Failed:    failed,
	}
}

type ProgressResponse struct {
	CompletedSets []int  `json:"completedSets"`
	Notes         string `json:"notes"`
}

func MapProgressToResponse(p domain.ProgressEntry) ProgressResponse {
	sets := p.CompletedSets
	if sets == nil {
		sets = []int{}
	}
	return ProgressResponse{CompletedSets: sets, Notes: p.Notes}
}

type TimerResponse struct {
	State     string  `json:"state"`
	Remaining int     `json:"remaining"`
	Initial   int     `json:"initial"`
	Fraction  float64 `json:"fraction"`
	Display   string  `json:"display"`
}

func MapTimerToResponse(s timer.Snapshot) TimerResponse {
	return TimerResponse{
		State:     s.State.String(),
		Remaining: s.Remaining,
		Initial:   s.Initial,
		Fraction:  s.Fraction,
		Display:   restinterval.Format(s.Remaining),
	}
}

type SessionExerciseResponse struct {
	ExerciseResponse
	Progress ProgressResponse `json:"progress"`
	Timer    TimerResponse    `json:"timer"`
}

type SessionResponse struct {
	ID            string                    `json:"id"`
	WorkoutID     string                    `json:"workoutId"`
	WorkoutName   string                    `json:"workoutName"`
	SessionDate   string                    `json:"sessionDate"`
	Exercises     []SessionExerciseResponse `json:"exercises"`
	CompletedSets int                       `json:"completedSets"`
	TotalSets     int                       `json:"totalSets"`
	Percent       float64                   `json:"percent"`
	Synced        bool                      `json:"synced"`
}

// ProgressUpdateResponse is returned by set and notes mutations. Applied is
// false when the change was ignored, such as a set index out of range.
type ProgressUpdateResponse struct {
	ExerciseID string           `json:"exerciseId"`
	Applied    bool             `json:"applied"`
	Progress   ProgressResponse `json:"progress"`
	Synced     bool             `json:"synced"`
}
