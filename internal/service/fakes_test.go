package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
)

var errBoom = errors.New("boom")

// failingExercises fails Create for the named exercises and Delete for the
// listed IDs.
type failingExercises struct {
	repository.ExerciseRepository
	failCreate map[string]bool
	failDelete map[string]bool
}

func (f *failingExercises) Create(ctx context.Context, e *domain.Exercise) (string, error) {
	if f.failCreate[e.Name] {
		return "", errBoom
	}
	return f.ExerciseRepository.Create(ctx, e)
}

func (f *failingExercises) Delete(ctx context.Context, id string) error {
	if f.failDelete[id] {
		return errBoom
	}
	return f.ExerciseRepository.Delete(ctx, id)
}

type failingWorkouts struct {
	repository.WorkoutRepository
	failCreate bool
}

func (f *failingWorkouts) Create(ctx context.Context, w *domain.Workout) (string, error) {
	if f.failCreate {
		return "", errBoom
	}
	return f.WorkoutRepository.Create(ctx, w)
}

type failingProgress struct {
	repository.ProgressRepository
	failDelete map[string]bool
}

func (f *failingProgress) DeleteByExercise(ctx context.Context, exerciseID string) error {
	if f.failDelete[exerciseID] {
		return errBoom
	}
	return f.ProgressRepository.DeleteByExercise(ctx, exerciseID)
}

// fakeStorage records objects in memory.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
	failDel bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) PutObject(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if f.failPut {
		return errBoom
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	if f.failDel {
		return errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}
