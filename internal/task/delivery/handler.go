package delivery

import (
	"errors"
	"log"
	"net/http"

	"teamtodo-backend/internal/task/domain"
	"teamtodo-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

func taskKey(c *gin.Context) domain.TaskKey {
	return domain.TaskKey{ProjectID: c.Param("projectId"), TaskID: c.Param("taskId")}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrInvalidTask):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[TaskAPI] Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetAssignedTasks returns all tasks assigned to the authenticated user
// GET /api/tasks
func (h *TaskHandler) GetAssignedTasks(c *gin.Context) {
	userID := c.GetString("userID")

	tasks, err := h.taskUsecase.ListAssignedTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetTask returns a specific task
// GET /api/projects/:projectId/tasks/:taskId
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskUsecase.GetTask(c.Request.Context(), c.GetString("userID"), taskKey(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
// POST /api/projects/:projectId/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req usecase.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ProjectID = c.Param("projectId")

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask updates an existing task
// PATCH /api/projects/:projectId/tasks/:taskId
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req usecase.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.UpdateTask(c.Request.Context(), c.GetString("userID"), taskKey(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// SetCompleted is a convenience endpoint to toggle completion
// PATCH /api/projects/:projectId/tasks/:taskId/completed
func (h *TaskHandler) SetCompleted(c *gin.Context) {
	var req struct {
		IsCompleted *bool `json:"isCompleted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.SetCompleted(c.Request.Context(), c.GetString("userID"), taskKey(c), *req.IsCompleted)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// AssignTask sets or clears the assignee
// PUT /api/projects/:projectId/tasks/:taskId/assignee
func (h *TaskHandler) AssignTask(c *gin.Context) {
	var req struct {
		AssignedTo string `json:"assignedTo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskUsecase.AssignTask(c.Request.Context(), c.GetString("userID"), taskKey(c), req.AssignedTo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// DELETE /api/projects/:projectId/tasks/:taskId
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskUsecase.DeleteTask(c.Request.Context(), c.GetString("userID"), taskKey(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
