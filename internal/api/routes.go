package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/session"
)

func SetupRoutes(
	router *gin.Engine,
	log *logger.Logger,
	importService service.ImportService,
	workoutService service.WorkoutService,
	sessions *session.Manager,
	maxUploadSize int64,
) {
	workoutHandler := NewWorkoutHandler(importService, workoutService, sessions, maxUploadSize, log)
	sessionHandler := NewSessionHandler(sessions, log)

	router.Use(RequestID(), RequestLogger(log))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		workoutGroup := apiV1.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("/import", workoutHandler.ImportWorkout)
			workoutGroup.POST("/preview", workoutHandler.PreviewWorkout)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
			workoutGroup.GET("/:workoutId/source", workoutHandler.GetSourceURL)
		}

		sessionGroup := apiV1.Group("/session")
		{
			sessionGroup.POST("", sessionHandler.OpenSession)
			sessionGroup.GET("", sessionHandler.GetSession)
			sessionGroup.POST("/reset", sessionHandler.ResetProgress)

			// Progress of one exercise on the session date
			sessionGroup.POST("/exercises/:exerciseId/sets/:setIndex", sessionHandler.ToggleSet)
			sessionGroup.PUT("/exercises/:exerciseId/notes", sessionHandler.UpdateNotes)

			// Rest timer of one exercise
			sessionGroup.GET("/exercises/:exerciseId/timer", sessionHandler.GetTimer)
			sessionGroup.POST("/exercises/:exerciseId/timer/toggle", sessionHandler.ToggleTimer)
			sessionGroup.POST("/exercises/:exerciseId/timer/reset", sessionHandler.ResetTimer)
		}
	}
}
