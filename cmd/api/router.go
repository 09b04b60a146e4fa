package api

import (
	"net/http"

	"teamtodo-backend/internal/auth/delivery"
	authUsecase "teamtodo-backend/internal/auth/usecase"
	notifDelivery "teamtodo-backend/internal/notification/delivery"
	taskDelivery "teamtodo-backend/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, taskHandler *taskDelivery.TaskHandler, eventHandler *notifDelivery.EventHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Firestore change events pushed by Eventarc; authenticated at the platform edge
		if eventHandler != nil {
			api.POST("/events/firestore", eventHandler.HandleFirestoreEvent)
		}

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(delivery.AuthMiddleware(authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("", authHandler.UnregisterFCMToken)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(delivery.AuthMiddleware(authUsecase))
		{
			tasks.GET("", taskHandler.GetAssignedTasks)
		}

		projectTasks := api.Group("/projects/:projectId/tasks")
		projectTasks.Use(delivery.AuthMiddleware(authUsecase))
		{
			projectTasks.POST("", taskHandler.CreateTask)
			projectTasks.GET("/:taskId", taskHandler.GetTask)
			projectTasks.PATCH("/:taskId", taskHandler.UpdateTask)
			projectTasks.DELETE("/:taskId", taskHandler.DeleteTask)
			projectTasks.PATCH("/:taskId/completed", taskHandler.SetCompleted)
			projectTasks.PUT("/:taskId/assignee", taskHandler.AssignTask)
		}
	}
}
