package api

import (
	"coachdesk/portal/internal/domain"
	"coachdesk/portal/internal/service"
	"coachdesk/portal/internal/storage"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	accessService service.WorkoutAccessService,
	rosterService service.RosterService,
	resolver service.AssignmentResolver,
	fileStorage storage.FileStorage,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(accessService, fileStorage)
	rosterHandler := NewRosterHandler(rosterService, resolver)

	router.Use(RequestIDMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			actor, err := actorFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get actor from token")
				return
			}
			c.JSON(http.StatusOK, actor)
		})

		// --- Workout access (clients and trainers; the service scopes results) ---
		protected.GET("/workouts", workoutHandler.ListMyWorkouts)
		protected.GET("/workouts/:id", workoutHandler.GetWorkout)
		protected.PATCH("/workouts/:id", workoutHandler.UpdateWorkout)
		protected.GET("/workouts/:id/video-url", workoutHandler.GetVideoDownloadURL)
		protected.POST("/workouts/:id/video-upload-url", workoutHandler.RequestVideoUploadURL)
		protected.GET("/clients/:clientId/workouts", workoutHandler.ListClientWorkouts)

		// --- Trainer management ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.POST("/clients", rosterHandler.AddClient)
			trainerGroup.GET("/clients", rosterHandler.ListActiveClients)
			trainerGroup.DELETE("/clients/:clientId", rosterHandler.RemoveClient)
			trainerGroup.POST("/workouts", workoutHandler.CreateWorkout)
		}
	}
}
