package repository

import (
	"context"
	"time"

	"teamtodo-backend/internal/task/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Get returns the task or domain.ErrTaskNotFound
	Get(ctx context.Context, key domain.TaskKey) (*domain.Task, error)

	// Create stores a new task and returns its store-assigned id
	Create(ctx context.Context, task *domain.Task) (string, error)

	// Update applies a partial update; updatedAt is always set
	Update(ctx context.Context, key domain.TaskKey, update TaskUpdate) error

	// Delete removes the task permanently
	Delete(ctx context.Context, key domain.TaskKey) error

	// ListAssigned returns every task assigned to userID across projects
	ListAssigned(ctx context.Context, userID string) ([]*domain.Task, error)

	// ListenAssigned delivers the full current set of tasks assigned to userID
	// on every change until the subscription is stopped
	ListenAssigned(ctx context.Context, userID string, onSnapshot func([]*domain.Task)) (Subscription, error)
}

// TaskUpdate carries the fields to change. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *domain.DueDate
	IsCompleted *bool
	AssignedTo  *domain.Assignee
	Priority    *domain.Priority
	Subtasks    *[]domain.Subtask
	UpdatedAt   time.Time
}

// Subscription is a live listener handle
type Subscription interface {
	Stop()

	// Done is closed once no further snapshots will be delivered, either
	// because Stop was called or because the listener failed
	Done() <-chan struct{}

	// Err reports why the listener failed; nil while running or when it
	// ended through Stop
	Err() error
}
