package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"teamtodo-backend/internal/task/domain"

	"github.com/google/uuid"
)

// MemoryTaskRepository is an in-process TaskRepository. Listeners receive the
// full assigned set synchronously after every mutation, in mutation order.
// A listener callback must not mutate the repository.
type MemoryTaskRepository struct {
	mu        sync.RWMutex
	tasks     map[domain.TaskKey]domain.Task
	listeners map[int]*memorySubscription
	nextID    int

	// serializes snapshot computation and delivery
	notifyMu sync.Mutex
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks:     make(map[domain.TaskKey]domain.Task),
		listeners: make(map[int]*memorySubscription),
	}
}

func (r *MemoryTaskRepository) Get(_ context.Context, key domain.TaskKey) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[key]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *domain.Task) (string, error) {
	if task.ProjectID == "" {
		return "", fmt.Errorf("project id required: %w", domain.ErrInvalidTask)
	}

	r.mu.Lock()
	t := *cloneTask(*task)
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	r.tasks[t.Key()] = t
	r.mu.Unlock()

	r.notify()
	return t.ID, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, key domain.TaskKey, update TaskUpdate) error {
	r.mu.Lock()
	t, ok := r.tasks[key]
	if !ok {
		r.mu.Unlock()
		return domain.ErrTaskNotFound
	}
	applyUpdate(&t, update)
	r.tasks[key] = t
	r.mu.Unlock()

	r.notify()
	return nil
}

func applyUpdate(t *domain.Task, update TaskUpdate) {
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.DueDate != nil {
		t.DueDate = *update.DueDate
	}
	if update.IsCompleted != nil {
		t.IsCompleted = *update.IsCompleted
	}
	if update.AssignedTo != nil {
		t.AssignedTo = *update.AssignedTo
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.Subtasks != nil {
		t.Subtasks = append([]domain.Subtask(nil), (*update.Subtasks)...)
	}
	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	t.UpdatedAt = &updatedAt
}

func (r *MemoryTaskRepository) Delete(_ context.Context, key domain.TaskKey) error {
	r.mu.Lock()
	delete(r.tasks, key)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *MemoryTaskRepository) ListAssigned(_ context.Context, userID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assignedLocked(userID), nil
}

func (r *MemoryTaskRepository) ListenAssigned(_ context.Context, userID string, onSnapshot func([]*domain.Task)) (Subscription, error) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	sub := &memorySubscription{repo: r, id: r.nextID, userID: userID, fn: onSnapshot, done: make(chan struct{})}
	r.nextID++
	r.listeners[sub.id] = sub
	initial := r.assignedLocked(userID)
	r.mu.Unlock()

	onSnapshot(initial)
	return sub, nil
}

// FailListeners ends every active subscription with err, the way a store
// listener ends on a terminal error.
func (r *MemoryTaskRepository) FailListeners(err error) {
	r.mu.Lock()
	subs := make([]*memorySubscription, 0, len(r.listeners))
	for id, sub := range r.listeners {
		subs = append(subs, sub)
		delete(r.listeners, id)
	}
	r.mu.Unlock()

	for _, sub := range subs {
		sub.finish(err)
	}
}

// assignedLocked returns the assigned tasks ordered by createdAt descending.
func (r *MemoryTaskRepository) assignedLocked(userID string) []*domain.Task {
	var out []*domain.Task
	for _, t := range r.tasks {
		if uid, ok := t.AssignedTo.Get(); ok && uid == userID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// notify holds notifyMu from snapshot to delivery, so a later mutation can
// never have its snapshot overtaken by an earlier one.
func (r *MemoryTaskRepository) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.RLock()
	type delivery struct {
		fn    func([]*domain.Task)
		tasks []*domain.Task
	}
	var pending []delivery
	for _, l := range r.listeners {
		pending = append(pending, delivery{fn: l.fn, tasks: r.assignedLocked(l.userID)})
	}
	r.mu.RUnlock()

	for _, d := range pending {
		d.fn(d.tasks)
	}
}

type memorySubscription struct {
	repo   *MemoryTaskRepository
	id     int
	userID string
	fn     func([]*domain.Task)

	once sync.Once
	done chan struct{}
	err  error
}

func (s *memorySubscription) finish(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

func (s *memorySubscription) Stop() {
	s.repo.mu.Lock()
	delete(s.repo.listeners, s.id)
	s.repo.mu.Unlock()
	s.finish(nil)
}

func (s *memorySubscription) Done() <-chan struct{} {
	return s.done
}

// Err is only meaningful once Done is closed.
func (s *memorySubscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

func cloneTask(t domain.Task) *domain.Task {
	c := t
	c.Subtasks = append([]domain.Subtask(nil), t.Subtasks...)
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	return &c
}
