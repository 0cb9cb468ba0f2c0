// Package session holds the state of the workout currently being performed:
// its exercises, the day's progress and one rest timer per exercise.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/timer"
)

var (
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrNoActiveSession  = errors.New("no active session")
	ErrExerciseNotFound = errors.New("exercise not in session")
)

// Session is one opened workout. It is created by Manager.Open and torn down
// when another workout is opened, the workout is deleted or the Manager
// closes.
type Session struct {
	ID        string
	Workout   domain.Workout
	Exercises []domain.Exercise
	Date      domain.SessionDate
	Progress  *ProgressStore
	OpenedAt  time.Time

	byID      map[string]int
	timerOpts []timer.Option
	log       *logger.Logger

	mu     sync.Mutex
	timers map[string]*timer.Timer
	closed bool
}

// Exercise returns the exercise with the given ID.
func (s *Session) Exercise(id string) (domain.Exercise, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Exercise{}, false
	}
	return s.Exercises[i], true
}

// Timer returns the rest timer of an exercise, creating it on first use.
func (s *Session) Timer(exerciseID string) (*timer.Timer, error) {
	ex, ok := s.Exercise(exerciseID)
	if !ok {
		return nil, ErrExerciseNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrNoActiveSession
	}
	t, ok := s.timers[exerciseID]
	if !ok {
		t = timer.New(s.timerOpts...)
		log := s.log
		t.OnChange(func(snap timer.Snapshot) {
			if snap.State == timer.Expired {
				log.Info("rest finished", "exercise_id", ex.ID, "exercise", ex.Name)
			}
		})
		s.timers[exerciseID] = t
	}
	return t, nil
}

// ToggleTimer starts, pauses or resumes the rest timer of an exercise using
// the exercise's rest text.
func (s *Session) ToggleTimer(exerciseID string) (timer.Snapshot, error) {
	t, err := s.Timer(exerciseID)
	if err != nil {
		return timer.Snapshot{}, err
	}
	ex, _ := s.Exercise(exerciseID)
	return t.Toggle(ex.Rest), nil
}

// TimerSnapshot returns the state of an exercise's timer without creating it.
func (s *Session) TimerSnapshot(exerciseID string) (timer.Snapshot, error) {
	if _, ok := s.Exercise(exerciseID); !ok {
		return timer.Snapshot{}, ErrExerciseNotFound
	}
	s.mu.Lock()
	t, ok := s.timers[exerciseID]
	s.mu.Unlock()
	if !ok {
		return timer.Snapshot{State: timer.Idle}, nil
	}
	return t.Snapshot(), nil
}

// close stops every timer and waits for outstanding progress writes.
func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range timers {
		t.Close()
	}
	// Mutations stop even when the flush below runs out of time.
	s.Progress.stop()
	err := s.Progress.Flush(ctx)
	s.log.Info("session closed", "synced", s.Progress.Synced())
	return err
}

// Options configures the sessions a Manager opens.
type Options struct {
	PersistTimeout time.Duration
	Tick           time.Duration
	Ticker         timer.TickerFunc // nil selects real tickers
	Now            func() time.Time
}

// Manager owns the single active Session.
type Manager struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	progressRepo repository.ProgressRepository
	opts         Options
	log          *logger.Logger

	mu     sync.Mutex
	active *Session
}

func NewManager(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	progressRepo repository.ProgressRepository,
	opts Options,
	log *logger.Logger,
) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		progressRepo: progressRepo,
		opts:         opts,
		log:          log,
	}
}

// Open loads a workout with its exercises and today's progress and makes it
// the active session, closing the previous one. The session date is fixed
// here and does not advance while the session is open.
func (m *Manager) Open(ctx context.Context, workoutID string) (*Session, error) {
	workout, err := m.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("load workout: %w", err)
	}
	exercises, err := m.exerciseRepo.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}

	openedAt := m.opts.Now()
	date := domain.DateOf(openedAt)
	ids := make([]string, len(exercises))
	byID := make(map[string]int, len(exercises))
	for i, ex := range exercises {
		ids[i] = ex.ID
		byID[ex.ID] = i
	}

	sessionID := uuid.NewString()
	log := m.log.With("session_id", sessionID, "workout_id", workoutID)

	initial, err := m.progressRepo.ListByDate(ctx, ids, date)
	if err != nil {
		// Progress is best effort; start from an empty day.
		log.Warn("progress not loaded", "session_date", date, "error", err)
		initial = nil
	}

	s := &Session{
		ID:        sessionID,
		Workout:   *workout,
		Exercises: exercises,
		Date:      date,
		Progress:  NewProgressStore(m.progressRepo, exercises, date, initial, m.opts.PersistTimeout, log),
		OpenedAt:  openedAt,
		byID:      byID,
		timerOpts: []timer.Option{timer.WithTick(m.opts.Tick), timer.WithTicker(m.opts.Ticker), timer.WithLogger(log)},
		log:       log,
		timers:    make(map[string]*timer.Timer),
	}

	m.mu.Lock()
	prev := m.active
	m.active = s
	m.mu.Unlock()

	if prev != nil {
		if err := prev.close(ctx); err != nil {
			log.Warn("previous session not flushed", "previous_session_id", prev.ID, "error", err)
		}
	}
	log.Info("session opened", "session_date", date, "exercises", len(exercises))
	return s, nil
}

// Active returns the active session.
func (m *Manager) Active() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, ErrNoActiveSession
	}
	return m.active, nil
}

// CloseIfWorkout closes the active session when it belongs to workoutID and
// reports whether it did.
func (m *Manager) CloseIfWorkout(ctx context.Context, workoutID string) (bool, error) {
	m.mu.Lock()
	s := m.active
	if s == nil || s.Workout.ID != workoutID {
		m.mu.Unlock()
		return false, nil
	}
	m.active = nil
	m.mu.Unlock()
	return true, s.close(ctx)
}

// Close closes the active session, if any.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	s := m.active
	m.active = nil
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.close(ctx)
}
