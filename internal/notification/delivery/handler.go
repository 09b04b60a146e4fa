package delivery

import (
	"io"
	"log"
	"net/http"

	"teamtodo-backend/internal/notification"

	"github.com/gin-gonic/gin"
)

// EventHandler receives Firestore document events pushed over HTTP by Eventarc
type EventHandler struct {
	service notification.EventHandler
}

func NewEventHandler(service notification.EventHandler) *EventHandler {
	return &EventHandler{service: service}
}

// HandleFirestoreEvent accepts a CloudEvent in binary content mode
// POST /api/events/firestore
func (h *EventHandler) HandleFirestoreEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	eventType := c.GetHeader("Ce-Type")
	outcome, err := h.service.HandleEvent(c.Request.Context(), eventType, c.GetHeader("Content-Type"), body)
	if err != nil {
		log.Printf("[EventIntake] Rejecting event %s: %v", c.GetHeader("Ce-Id"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2xx for every decoded event, including failed sends: redelivery is not wanted
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}
