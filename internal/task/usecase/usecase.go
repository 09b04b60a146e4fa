package usecase

import (
	"context"

	"teamtodo-backend/internal/task/domain"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// CreateTask creates a task in a project on behalf of userID
	CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (*domain.Task, error)

	// GetTask retrieves a task the user created or is assigned to
	GetTask(ctx context.Context, userID string, key domain.TaskKey) (*domain.Task, error)

	// ListAssignedTasks returns every task assigned to userID across projects
	ListAssignedTasks(ctx context.Context, userID string) ([]*domain.Task, error)

	// UpdateTask applies a partial update
	UpdateTask(ctx context.Context, userID string, key domain.TaskKey, req TaskUpdateRequest) (*domain.Task, error)

	// SetCompleted toggles completion
	SetCompleted(ctx context.Context, userID string, key domain.TaskKey, completed bool) (*domain.Task, error)

	// AssignTask sets or clears the assignee; an empty assignee unassigns
	AssignTask(ctx context.Context, userID string, key domain.TaskKey, assignee string) (*domain.Task, error)

	// DeleteTask deletes a task
	DeleteTask(ctx context.Context, userID string, key domain.TaskKey) error
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	ProjectID   string           `json:"-"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	DueDate     domain.DueDate   `json:"dueDate"`
	AssignedTo  domain.Assignee  `json:"assignedTo"`
	Priority    string           `json:"priority"`
	Subtasks    []SubtaskRequest `json:"subtasks"`
}

type SubtaskRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// TaskUpdateRequest represents the fields that can be updated.
// ClearDueDate removes the deadline and wins over DueDate.
type TaskUpdateRequest struct {
	Title        *string           `json:"title,omitempty"`
	Description  *string           `json:"description,omitempty"`
	DueDate      *domain.DueDate   `json:"dueDate,omitempty"`
	ClearDueDate bool              `json:"clearDueDate,omitempty"`
	Priority     *string           `json:"priority,omitempty"`
	Subtasks     *[]SubtaskRequest `json:"subtasks,omitempty"`
}
