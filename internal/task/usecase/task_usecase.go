package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"teamtodo-backend/internal/task/domain"
	"teamtodo-backend/internal/task/repository"

	"github.com/google/uuid"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, req CreateTaskRequest) (*domain.Task, error) {
	projectID := strings.TrimSpace(req.ProjectID)
	title := strings.TrimSpace(req.Title)
	if projectID == "" || title == "" {
		return nil, fmt.Errorf("project and title are required: %w", domain.ErrInvalidTask)
	}

	task := &domain.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   userID,
		CreatedAt:   u.now(),
		Priority:    domain.ParsePriority(req.Priority),
		Subtasks:    toSubtasks(req.Subtasks),
	}

	id, err := u.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	task.ID = id

	log.Printf("[TaskAPI] Created task %s by %s", task.Key(), userID)
	return task, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, userID string, key domain.TaskKey) (*domain.Task, error) {
	task, err := u.taskRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !canAccess(task, userID) {
		return nil, domain.ErrUnauthorized
	}
	return task, nil
}

func (u *taskUsecase) ListAssignedTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	return u.taskRepo.ListAssigned(ctx, userID)
}

func (u *taskUsecase) UpdateTask(ctx context.Context, userID string, key domain.TaskKey, req TaskUpdateRequest) (*domain.Task, error) {
	update := repository.TaskUpdate{
		Description: req.Description,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", domain.ErrInvalidTask)
		}
		update.Title = &title
	}
	switch {
	case req.ClearDueDate:
		none := domain.NoDueDate()
		update.DueDate = &none
	case req.DueDate != nil:
		update.DueDate = req.DueDate
	}
	if req.Priority != nil {
		p := domain.ParsePriority(*req.Priority)
		update.Priority = &p
	}
	if req.Subtasks != nil {
		subtasks := toSubtasks(*req.Subtasks)
		update.Subtasks = &subtasks
	}

	return u.apply(ctx, userID, key, update)
}

func (u *taskUsecase) SetCompleted(ctx context.Context, userID string, key domain.TaskKey, completed bool) (*domain.Task, error) {
	return u.apply(ctx, userID, key, repository.TaskUpdate{IsCompleted: &completed})
}

func (u *taskUsecase) AssignTask(ctx context.Context, userID string, key domain.TaskKey, assignee string) (*domain.Task, error) {
	a := domain.AssignedTo(strings.TrimSpace(assignee))
	return u.apply(ctx, userID, key, repository.TaskUpdate{AssignedTo: &a})
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID string, key domain.TaskKey) error {
	if _, err := u.GetTask(ctx, userID, key); err != nil {
		return err
	}
	if err := u.taskRepo.Delete(ctx, key); err != nil {
		return err
	}
	log.Printf("[TaskAPI] Deleted task %s by %s", key, userID)
	return nil
}

func (u *taskUsecase) apply(ctx context.Context, userID string, key domain.TaskKey, update repository.TaskUpdate) (*domain.Task, error) {
	if _, err := u.GetTask(ctx, userID, key); err != nil {
		return nil, err
	}

	update.UpdatedAt = u.now()
	if err := u.taskRepo.Update(ctx, key, update); err != nil {
		return nil, err
	}
	return u.taskRepo.Get(ctx, key)
}

// canAccess allows the creator and the current assignee.
func canAccess(task *domain.Task, userID string) bool {
	if userID == "" {
		return false
	}
	if task.CreatedBy == userID {
		return true
	}
	assignee, ok := task.AssignedTo.Get()
	return ok && assignee == userID
}

func toSubtasks(reqs []SubtaskRequest) []domain.Subtask {
	subtasks := make([]domain.Subtask, 0, len(reqs))
	for _, s := range reqs {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			continue
		}
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		subtasks = append(subtasks, domain.Subtask{ID: id, Title: title, IsCompleted: s.IsCompleted})
	}
	return subtasks
}
