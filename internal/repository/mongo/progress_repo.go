package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
)

const progressCollectionName = "exercise_progress"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new progress repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Upsert replaces the entry keyed by (exercise_id, session_date), inserting it
// when absent.
func (r *mongoProgressRepository) Upsert(ctx context.Context, p domain.ProgressEntry) error {
	if p.ExerciseID == "" || p.SessionDate == "" {
		return repository.ErrInvalidInput
	}
	sets := p.CompletedSets
	if sets == nil {
		sets = []int{}
	}

	filter := bson.M{"exercise_id": p.ExerciseID, "session_date": p.SessionDate}
	update := bson.M{
		"$set": bson.M{
			"completed_sets": sets,
			"notes":          p.Notes,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// ListByDate retrieves the entries of the given exercises on one session date.
func (r *mongoProgressRepository) ListByDate(ctx context.Context, exerciseIDs []string, date domain.SessionDate) ([]domain.ProgressEntry, error) {
	entries := []domain.ProgressEntry{}
	if len(exerciseIDs) == 0 {
		return entries, nil
	}

	filter := bson.M{
		"exercise_id":  bson.M{"$in": exerciseIDs},
		"session_date": date,
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i] = entries[i].Normalize()
	}
	return entries, nil
}

// DeleteByExercise removes every entry of an exercise. Deleting nothing is
// not an error.
func (r *mongoProgressRepository) DeleteByExercise(ctx context.Context, exerciseID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"exercise_id": exerciseID})
	return err
}

// EnsureProgressIndexes creates the unique (exercise_id, session_date) index
// that upserts rely on.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exercise_id", Value: 1}, {Key: "session_date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("exercise_session_unique"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
