package api

import (
	"log"

	authUsecase "teamtodo-backend/internal/auth/usecase"
	"teamtodo-backend/internal/notification"
	notifDelivery "teamtodo-backend/internal/notification/delivery"
	taskDelivery "teamtodo-backend/internal/task/delivery"
	taskUsecasePkg "teamtodo-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase  authUsecase.AuthUsecase
	taskHandler  *taskDelivery.TaskHandler
	eventHandler *notifDelivery.EventHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, taskUc taskUsecasePkg.TaskUsecase, events notification.EventHandler) *Handler {
	h := &Handler{
		authUsecase: authUc,
		taskHandler: taskDelivery.NewTaskHandler(taskUc),
	}
	log.Println("Task handler initialized")

	if events != nil {
		h.eventHandler = notifDelivery.NewEventHandler(events)
		log.Println("Firestore event endpoint enabled")
	}
	return h
}

// Router builds the gin engine with CORS and all routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, Ce-Id, Ce-Type, Ce-Source, Ce-Specversion")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.authUsecase, h.taskHandler, h.eventHandler)
	return r
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	return h.Router().Run(addr)
}
