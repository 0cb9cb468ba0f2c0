package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
)

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	if exercise.WorkoutID == "" || exercise.Name == "" {
		return "", repository.ErrInvalidInput
	}
	exercise.ID = newID()

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return "", err
	}
	return exercise.ID, nil
}

// ListByWorkout retrieves the exercises of a workout in import order.
func (r *mongoExerciseRepository) ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) {
	filter := bson.M{"workout_id": workoutID}
	findOptions := options.Find().SetSort(bson.D{{Key: "exercise_order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := []domain.Exercise{}
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// CountByWorkout groups exercises by workout and counts them.
func (r *mongoExerciseRepository) CountByWorkout(ctx context.Context, workoutIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(workoutIDs))
	if len(workoutIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"workout_id": bson.M{"$in": workoutIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$workout_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		WorkoutID string `bson:"_id"`
		Count     int    `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.WorkoutID] = row.Count
	}
	return counts, nil
}

// Delete removes a single exercise.
func (r *mongoExerciseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workout_id", Value: 1}, {Key: "exercise_order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
