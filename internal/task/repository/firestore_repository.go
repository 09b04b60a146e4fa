package repository

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"teamtodo-backend/internal/task/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	projectsCollection = "projects"
	tasksCollection    = "tasks"
)

// firestoreTaskRepository implements TaskRepository on projects/{projectId}/tasks/{taskId}
type firestoreTaskRepository struct {
	client *firestore.Client
}

// NewFirestoreTaskRepository creates a Firestore-backed TaskRepository
func NewFirestoreTaskRepository(client *firestore.Client) TaskRepository {
	return &firestoreTaskRepository{client: client}
}

func (r *firestoreTaskRepository) tasks(projectID string) *firestore.CollectionRef {
	return r.client.Collection(projectsCollection).Doc(projectID).Collection(tasksCollection)
}

func (r *firestoreTaskRepository) Get(ctx context.Context, key domain.TaskKey) (*domain.Task, error) {
	doc, err := r.tasks(key.ProjectID).Doc(key.TaskID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task %s: %w", key, err)
	}
	return TaskFromData(key.ProjectID, doc.Ref.ID, doc.Data())
}

func (r *firestoreTaskRepository) Create(ctx context.Context, task *domain.Task) (string, error) {
	ref := r.tasks(task.ProjectID).NewDoc()
	if _, err := ref.Create(ctx, taskToData(task)); err != nil {
		return "", fmt.Errorf("failed to create task in project %s: %w", task.ProjectID, err)
	}
	return ref.ID, nil
}

func (r *firestoreTaskRepository) Update(ctx context.Context, key domain.TaskKey, update TaskUpdate) error {
	updates := updatesFor(update)
	if _, err := r.tasks(key.ProjectID).Doc(key.TaskID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task %s: %w", key, err)
	}
	return nil
}

func updatesFor(update TaskUpdate) []firestore.Update {
	var updates []firestore.Update
	if update.Title != nil {
		updates = append(updates, firestore.Update{Path: fieldTitle, Value: *update.Title})
	}
	if update.Description != nil {
		updates = append(updates, firestore.Update{Path: fieldDescription, Value: *update.Description})
	}
	if update.DueDate != nil {
		if due, ok := update.DueDate.Get(); ok {
			updates = append(updates, firestore.Update{Path: fieldDueDate, Value: due})
		} else {
			updates = append(updates, firestore.Update{Path: fieldDueDate, Value: firestore.Delete})
		}
	}
	if update.IsCompleted != nil {
		updates = append(updates, firestore.Update{Path: fieldIsCompleted, Value: *update.IsCompleted})
	}
	if update.AssignedTo != nil {
		if uid, ok := update.AssignedTo.Get(); ok {
			updates = append(updates, firestore.Update{Path: fieldAssignedTo, Value: uid})
		} else {
			updates = append(updates, firestore.Update{Path: fieldAssignedTo, Value: firestore.Delete})
		}
	}
	if update.Priority != nil {
		updates = append(updates, firestore.Update{Path: fieldPriority, Value: string(*update.Priority)})
	}
	if update.Subtasks != nil {
		updates = append(updates, firestore.Update{Path: fieldSubtasks, Value: subtasksToData(*update.Subtasks)})
	}

	updatedAt := update.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return append(updates, firestore.Update{Path: fieldUpdatedAt, Value: updatedAt})
}

func (r *firestoreTaskRepository) Delete(ctx context.Context, key domain.TaskKey) error {
	if _, err := r.tasks(key.ProjectID).Doc(key.TaskID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", key, err)
	}
	return nil
}

func (r *firestoreTaskRepository) assignedQuery(userID string) firestore.Query {
	return r.client.CollectionGroup(tasksCollection).Where(fieldAssignedTo, "==", userID)
}

func (r *firestoreTaskRepository) ListAssigned(ctx context.Context, userID string) ([]*domain.Task, error) {
	docs, err := r.assignedQuery(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks assigned to %s: %w", userID, err)
	}
	return decodeSnapshots(docs), nil
}

func (r *firestoreTaskRepository) ListenAssigned(ctx context.Context, userID string, onSnapshot func([]*domain.Task)) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	it := r.assignedQuery(userID).Snapshots(ctx)
	sub := &snapshotSubscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					log.Printf("[TaskRepo] Listener for %s stopped: %v", userID, err)
					sub.finish(fmt.Errorf("listener for tasks assigned to %s: %w", userID, err))
					return
				}
				sub.finish(nil)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("[TaskRepo] Error reading snapshot for %s: %v", userID, err)
				continue
			}
			onSnapshot(decodeSnapshots(docs))
		}
	}()

	return sub, nil
}

// decodeSnapshots skips documents that fail validation.
func decodeSnapshots(docs []*firestore.DocumentSnapshot) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		projectID := ""
		if parent := doc.Ref.Parent.Parent; parent != nil {
			projectID = parent.ID
		}
		task, err := TaskFromData(projectID, doc.Ref.ID, doc.Data())
		if err != nil {
			log.Printf("[TaskRepo] Skipping document %s: %v", doc.Ref.Path, err)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

type snapshotSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

func (s *snapshotSubscription) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.done)
}

func (s *snapshotSubscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *snapshotSubscription) Done() <-chan struct{} {
	return s.done
}

func (s *snapshotSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
