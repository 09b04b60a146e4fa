package reminder

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"teamtodo-backend/internal/task/domain"
	"teamtodo-backend/pkg/localnotify"
)

// IdentifierPrefix marks scheduler entries owned by the reconciler; entries
// without it are never touched.
const IdentifierPrefix = "task-"

// Scheduler is the local notification scheduler the reconciler drives
type Scheduler interface {
	Schedule(ctx context.Context, n localnotify.Notification) error
	Cancel(ctx context.Context, ids ...string) error
	Pending(ctx context.Context) ([]localnotify.Notification, error)
}

// Identifier is the scheduler entry id for a task's reminder.
func Identifier(taskID string) string {
	return IdentifierPrefix + taskID
}

// TaskIDFromIdentifier reverses Identifier; ok is false for foreign entries.
func TaskIDFromIdentifier(id string) (string, bool) {
	if !strings.HasPrefix(id, IdentifierPrefix) {
		return "", false
	}
	taskID := strings.TrimPrefix(id, IdentifierPrefix)
	return taskID, taskID != ""
}

// Result counts what one reconciliation pass did
type Result struct {
	Scheduled   int
	Rescheduled int
	Cancelled   int
	Unchanged   int
	Failed      int
}

// Operations is the number of scheduler mutations the pass made.
func (r Result) Operations() int {
	return r.Scheduled + r.Rescheduled + r.Cancelled
}

func (r Result) String() string {
	return fmt.Sprintf("scheduled=%d rescheduled=%d cancelled=%d unchanged=%d failed=%d",
		r.Scheduled, r.Rescheduled, r.Cancelled, r.Unchanged, r.Failed)
}

// Reconciler computes the desired reminder set and applies the difference
type Reconciler struct {
	scheduler Scheduler
	policy    Policy
	messages  messages
	now       func() time.Time
}

// NewReconciler renders reminder content in locale, falling back to Japanese.
func NewReconciler(scheduler Scheduler, policy Policy, locale string) *Reconciler {
	return &Reconciler{
		scheduler: scheduler,
		policy:    policy,
		messages:  messagesFor(locale),
		now:       time.Now,
	}
}

// Desired returns the reminder task should have at now, if it is eligible:
// assigned, not completed, has a due date, and its trigger is strictly in the
// future.
func (r *Reconciler) Desired(task *domain.Task, now time.Time) (localnotify.Notification, bool) {
	if task == nil || task.Validate() != nil || task.IsCompleted || !task.AssignedTo.IsAssigned() {
		return localnotify.Notification{}, false
	}
	due, ok := task.DueDate.Get()
	if !ok {
		return localnotify.Notification{}, false
	}
	at, ok := r.policy.Trigger(due, now)
	if !ok {
		return localnotify.Notification{}, false
	}

	title, body := r.messages.render(task, due, r.policy.location())
	return localnotify.Notification{
		ID:        Identifier(task.ID),
		TriggerAt: at,
		Title:     title,
		Body:      body,
	}, true
}

// Reconcile brings the scheduler's task reminders in line with tasks. An entry
// whose content already matches is left alone; a changed entry is cancelled and
// scheduled again. Individual scheduler failures are counted and logged and do
// not stop the pass. The error is non-nil only if the pending set cannot be read.
func (r *Reconciler) Reconcile(ctx context.Context, tasks []*domain.Task) (Result, error) {
	var res Result

	pending, err := r.scheduler.Pending(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list pending reminders: %w", err)
	}
	// read after Pending: an entry fired meanwhile must not look future
	now := r.now()

	existing := make(map[string]localnotify.Notification, len(pending))
	for _, n := range pending {
		if _, ok := TaskIDFromIdentifier(n.ID); ok {
			existing[n.ID] = n
		}
	}

	valid := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task != nil && task.Validate() != nil {
			log.Printf("[Reminder] Skipping invalid task %s", task.Key())
			continue
		}
		want, ok := r.Desired(task, now)
		if !ok {
			continue
		}
		valid[want.ID] = true

		current, exists := existing[want.ID]
		if exists && current.Equal(want) {
			res.Unchanged++
			continue
		}

		if exists {
			if err := r.scheduler.Cancel(ctx, want.ID); err != nil {
				log.Printf("[Reminder] Error cancelling stale reminder %s: %v", want.ID, err)
				res.Failed++
				continue
			}
			delete(existing, want.ID)
		}
		if err := r.scheduler.Schedule(ctx, want); err != nil {
			log.Printf("[Reminder] Error scheduling reminder %s: %v", want.ID, err)
			res.Failed++
			continue
		}
		existing[want.ID] = want
		if exists {
			res.Rescheduled++
		} else {
			res.Scheduled++
		}
	}

	for id := range existing {
		if valid[id] {
			continue
		}
		if err := r.scheduler.Cancel(ctx, id); err != nil {
			log.Printf("[Reminder] Error cancelling reminder %s: %v", id, err)
			res.Failed++
			continue
		}
		res.Cancelled++
	}

	return res, nil
}
