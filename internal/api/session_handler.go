package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/session"
	"alcyxob/workout-tracker/internal/timer"
)

// SessionHandler serves the active workout session: set tracking, notes and
// rest timers.
type SessionHandler struct {
	sessions *session.Manager
	log      *logger.Logger
}

func NewSessionHandler(sessions *session.Manager, log *logger.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

type OpenSessionRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

type UpdateNotesRequest struct {
	Notes *string `json:"notes" binding:"required"`
}

// OpenSession godoc
// @Summary Open a workout session
// @Description Makes the workout the active session for today, loading any progress already recorded. The previous session is closed.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body OpenSessionRequest true "Workout to open"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Workout not found"
// @Router /session [post]
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	s, err := h.sessions.Open(c.Request.Context(), strings.TrimSpace(req.WorkoutID))
	if err != nil {
		h.handleSessionError(c, err, "Failed to open session.")
		return
	}
	c.JSON(http.StatusCreated, mapSessionToResponse(s))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapSessionToResponse(s))
}

// ToggleSet godoc
// @Summary Toggle one set of an exercise
// @Description Marks the set done or not done. The change is applied at once and saved in the background; synced reports whether every change has been stored.
// @Tags Session
// @Produce json
// @Param exerciseId path string true "Exercise ID"
// @Param setIndex path int true "Zero-based set index"
// @Success 200 {object} ProgressUpdateResponse
// @Failure 404 {object} gin.H "Exercise not in session"
// @Failure 409 {object} gin.H "No active session"
// @Router /session/exercises/{exerciseId}/sets/{setIndex} [post]
func (h *SessionHandler) ToggleSet(c *gin.Context) {
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	exerciseID := c.Param("exerciseId")
	if _, found := s.Exercise(exerciseID); !found {
		abortWithError(c, http.StatusNotFound, session.ErrExerciseNotFound.Error())
		return
	}
	setIndex, err := strconv.Atoi(c.Param("setIndex"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid set index.")
		return
	}

	entry, applied := s.Progress.ToggleSet(exerciseID, setIndex)
	c.JSON(http.StatusOK, ProgressUpdateResponse{
		ExerciseID: exerciseID,
		Applied:    applied,
		Progress:   MapProgressToResponse(entry),
		Synced:     s.Progress.Synced(),
	})
}

func (h *SessionHandler) UpdateNotes(c *gin.Context) {
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	exerciseID := c.Param("exerciseId")
	if _, found := s.Exercise(exerciseID); !found {
		abortWithError(c, http.StatusNotFound, session.ErrExerciseNotFound.Error())
		return
	}
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, applied := s.Progress.UpdateNotes(exerciseID, *req.Notes)
	c.JSON(http.StatusOK, ProgressUpdateResponse{
		ExerciseID: exerciseID,
		Applied:    applied,
		Progress:   MapProgressToResponse(entry),
		Synced:     s.Progress.Synced(),
	})
}

// ResetProgress clears every exercise of the session for today and waits for
// the writes. Failed writes are reported but the local state stays cleared.
func (h *SessionHandler) ResetProgress(c *gin.Context) {
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	if err := s.Progress.Reset(c.Request.Context()); err != nil {
		h.log.Warn("progress reset not fully stored", "session_id", s.ID, "error", err)
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, mapSessionToResponse(s))
}

func (h *SessionHandler) GetTimer(c *gin.Context) {
	h.timerAction(c, func(s *session.Session, exerciseID string) (timer.Snapshot, error) {
		return s.TimerSnapshot(exerciseID)
	})
}

// ToggleTimer starts, pauses or resumes the rest timer of an exercise.
func (h *SessionHandler) ToggleTimer(c *gin.Context) {
	h.timerAction(c, func(s *session.Session, exerciseID string) (timer.Snapshot, error) {
		return s.ToggleTimer(exerciseID)
	})
}

func (h *SessionHandler) ResetTimer(c *gin.Context) {
	h.timerAction(c, func(s *session.Session, exerciseID string) (timer.Snapshot, error) {
		t, err := s.Timer(exerciseID)
		if err != nil {
			return timer.Snapshot{}, err
		}
		return t.Reset(), nil
	})
}

func (h *SessionHandler) timerAction(c *gin.Context, action func(*session.Session, string) (timer.Snapshot, error)) {
	s, ok := h.activeSession(c)
	if !ok {
		return
	}
	exerciseID := c.Param("exerciseId")
	snap, err := action(s, exerciseID)
	if err != nil {
		h.handleSessionError(c, err, "Failed to update timer.")
		return
	}
	c.JSON(http.StatusOK, MapTimerToResponse(snap))
}

func (h *SessionHandler) activeSession(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Active()
	if err != nil {
		h.handleSessionError(c, err, "Failed to load session.")
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, session.ErrWorkoutNotFound), errors.Is(err, session.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNoActiveSession):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}

func mapSessionToResponse(s *session.Session) SessionResponse {
	progress := s.Progress.Snapshot()
	exercises := make([]SessionExerciseResponse, len(s.Exercises))
	for i, ex := range s.Exercises {
		snap, err := s.TimerSnapshot(ex.ID)
		if err != nil {
			snap = timer.Snapshot{State: timer.Idle}
		}
		exercises[i] = SessionExerciseResponse{
			ExerciseResponse: MapExerciseToResponse(ex),
			Progress:         MapProgressToResponse(progress[ex.ID]),
			Timer:            MapTimerToResponse(snap),
		}
	}
	completed, total := s.Progress.Totals()
	return SessionResponse{
		ID:            s.ID,
		WorkoutID:     s.Workout.ID,
		WorkoutName:   s.Workout.Name,
		SessionDate:   s.Date.String(),
		Exercises:     exercises,
		CompletedSets: completed,
		TotalSets:     total,
		Percent:       s.Progress.Percent(),
		Synced:        s.Progress.Synced(),
	}
}
