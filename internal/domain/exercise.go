// internal/domain/exercise.go
package domain

// Field limits enforced before an Exercise is persisted.
const (
	MaxWorkoutNameLen   = 200
	MaxNameLen          = 100
	MaxDescriptionLen   = 500
	MaxRepsLen          = 100
	MaxSpeedLen         = 200
	MaxRestLen          = 100
	MaxVideoURLLen      = 500
	DefaultExerciseName = "Unnamed Exercise"
)

// Exercise is one row of an imported workout. Rows are created in a batch at
// import time and are never edited individually afterwards.
type Exercise struct {
	ID            string `bson:"_id,omitempty" json:"id"`
	WorkoutID     string `bson:"workout_id" json:"workout_id"`
	ExerciseOrder int    `bson:"exercise_order" json:"exercise_order"` // 1-based, assigned from ingestion position
	Name          string `bson:"name" json:"name"`
	Description   string `bson:"description" json:"description"`
	Reps          string `bson:"reps" json:"reps"`   // free text, e.g. "10" or "8-12"
	Speed         string `bson:"speed" json:"speed"` // free text tempo
	Rest          string `bson:"rest" json:"rest"`   // free text, parsed by restinterval
	Sets          int    `bson:"sets" json:"sets"`
	VideoURL      string `bson:"video_url" json:"video_url"`
}

// TotalSets returns the sum of Sets over exercises.
func TotalSets(exercises []Exercise) int {
	total := 0
	for _, ex := range exercises {
		total += ex.Sets
	}
	return total
}
