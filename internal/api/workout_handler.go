package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/ingest"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/session"
)

// WorkoutHandler serves workout import, listing and deletion.
type WorkoutHandler struct {
	importService  service.ImportService
	workoutService service.WorkoutService
	sessions       *session.Manager
	maxUploadSize  int64
	log            *logger.Logger
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(
	importService service.ImportService,
	workoutService service.WorkoutService,
	sessions *session.Manager,
	maxUploadSize int64,
	log *logger.Logger,
) *WorkoutHandler {
	return &WorkoutHandler{
		importService:  importService,
		workoutService: workoutService,
		sessions:       sessions,
		maxUploadSize:  maxUploadSize,
		log:            log,
	}
}

// --- Handler Methods ---

// ImportWorkout godoc
// @Summary Import a workout from a spreadsheet
// @Description Parses an uploaded .csv or .xlsx file and stores its rows as exercises of a new workout.
// @Tags Workouts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.csv or .xlsx)"
// @Param name formData string false "Workout name, defaults to the file name"
// @Success 201 {object} ImportResponse "Workout imported"
// @Failure 400 {object} gin.H "Missing or unreadable file"
// @Failure 413 {object} gin.H "File too large"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/import [post]
func (h *WorkoutHandler) ImportWorkout(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "File is required in the 'file' form field.")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, service.ErrFileTooLarge.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	result, err := h.importService.ImportFile(c.Request.Context(), fileHeader.Filename, c.PostForm("name"), file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapImportResultToResponse(result))
}

// PreviewWorkout parses an upload and returns the exercises it would create.
// Nothing is stored.
func (h *WorkoutHandler) PreviewWorkout(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "File is required in the 'file' form field.")
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, service.ErrFileTooLarge.Error())
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to read uploaded file.")
		return
	}
	defer file.Close()

	exercises, err := h.importService.Preview(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": MapExercisesToResponse(exercises)})
}

func (h *WorkoutHandler) handleImportError(c *gin.Context, err error) {
	var parseErr *ingest.ParseError
	switch {
	case errors.As(err, &parseErr):
		abortWithError(c, http.StatusBadRequest, "Failed to parse file: "+parseErr.Err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		abortWithError(c, http.StatusRequestEntityTooLarge, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to import workout.")
	}
}

// ListWorkouts godoc
// @Summary List imported workouts
// @Description Returns every workout, newest first, with its exercise count.
// @Tags Workouts
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	summaries, err := h.workoutService.ListWorkouts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
		return
	}
	responses := make([]WorkoutResponse, len(summaries))
	for i, s := range summaries {
		responses[i] = MapWorkoutToResponse(s.Workout, s.ExerciseCount)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workoutID := strings.TrimSpace(c.Param("workoutId"))
	workout, exercises, err := h.workoutService.GetWorkout(c.Request.Context(), workoutID)
	if err != nil {
		h.handleWorkoutError(c, err, "Failed to retrieve workout.")
		return
	}
	c.JSON(http.StatusOK, WorkoutDetailResponse{
		WorkoutResponse: MapWorkoutToResponse(*workout, len(exercises)),
		Exercises:       MapExercisesToResponse(exercises),
	})
}

// DeleteWorkout godoc
// @Summary Delete a workout
// @Description Deletes a workout with its exercises, their progress and the archived source file. Steps that fail are listed in the report.
// @Tags Workouts
// @Produce json
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} service.DeleteReport
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	workoutID := strings.TrimSpace(c.Param("workoutId"))
	ctx := c.Request.Context()

	// The active session must stop writing progress before its rows go away.
	if closed, err := h.sessions.CloseIfWorkout(ctx, workoutID); err != nil {
		h.log.Warn("session of deleted workout not flushed", "workout_id", workoutID, "error", err)
	} else if closed {
		h.log.Info("session closed for deleted workout", "workout_id", workoutID)
	}

	report, err := h.workoutService.DeleteWorkout(ctx, workoutID)
	if err != nil {
		h.handleWorkoutError(c, err, "Failed to delete workout.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSourceURL returns a short-lived download link for the imported file.
func (h *WorkoutHandler) GetSourceURL(c *gin.Context) {
	workoutID := strings.TrimSpace(c.Param("workoutId"))
	url, err := h.workoutService.SourceURL(c.Request.Context(), workoutID)
	if err != nil {
		h.handleWorkoutError(c, err, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *WorkoutHandler) handleWorkoutError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoSource):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
