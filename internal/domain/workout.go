package domain

import "time"

// Workout is a named list of exercises created by a single spreadsheet import.
type Workout struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	SourceKey string    `bson:"source_key,omitempty" json:"-"` // object key of the archived spreadsheet, if any
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// WorkoutSummary is a Workout decorated with the number of exercises it owns.
type WorkoutSummary struct {
	Workout
	ExerciseCount int `json:"exercise_count"`
}
