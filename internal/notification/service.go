package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	authdomain "teamtodo-backend/internal/auth/domain"
	authrepo "teamtodo-backend/internal/auth/repository"
	"teamtodo-backend/internal/notification/domain"
	notifrepo "teamtodo-backend/internal/notification/repository"
	taskdomain "teamtodo-backend/internal/task/domain"
	taskrepo "teamtodo-backend/internal/task/repository"
	"teamtodo-backend/pkg/fcm"
	"teamtodo-backend/pkg/firestoreevent"

	"github.com/google/uuid"
)

// TaskDocumentPattern is the trigger path for task documents
const TaskDocumentPattern = "projects/{projectId}/tasks/{taskId}"

// PushSender is satisfied by *fcm.Client
type PushSender interface {
	SendToDevice(ctx context.Context, token string, notification fcm.NotificationData) error
}

// Service sends a best-effort push to the user a task was (re)assigned to.
// It never retries and never writes back to the task store.
type Service struct {
	userRepo     authrepo.UserRepository
	push         PushSender
	deliveryRepo notifrepo.DeliveryLogRepository
	messages     Messages
	now          func() time.Time
}

// NewService creates the assignment notifier. deliveryRepo may be nil.
func NewService(userRepo authrepo.UserRepository, push PushSender, deliveryRepo notifrepo.DeliveryLogRepository, locale string) *Service {
	return &Service{
		userRepo:     userRepo,
		push:         push,
		deliveryRepo: deliveryRepo,
		messages:     MessagesFor(locale),
		now:          time.Now,
	}
}

// HandleEvent routes a Firestore document event. contentType is the event's
// datacontenttype. The error is non-nil only for undecodable payloads; delivery
// problems are reported through the Outcome.
func (s *Service) HandleEvent(ctx context.Context, eventType, contentType string, data []byte) (domain.Outcome, error) {
	if eventType != firestoreevent.TypeCreated && eventType != firestoreevent.TypeUpdated {
		return domain.OutcomeIgnored, nil
	}

	ev, err := firestoreevent.Decode(data, contentType)
	if err != nil {
		return "", err
	}
	if ev.Value == nil {
		return domain.OutcomeIgnored, nil
	}

	params, ok := firestoreevent.MatchPath(TaskDocumentPattern, ev.Value.Name)
	if !ok {
		return domain.OutcomeIgnored, nil
	}
	key := taskdomain.TaskKey{ProjectID: params["projectId"], TaskID: params["taskId"]}

	after, err := taskrepo.TaskFromData(key.ProjectID, key.TaskID, ev.Value.Fields)
	if err != nil {
		log.Printf("[Notifier] Ignoring task %s: %v", key, err)
		return domain.OutcomeSkippedInvalid, nil
	}

	if eventType == firestoreevent.TypeCreated {
		return s.HandleTaskCreated(ctx, after), nil
	}

	before := taskdomain.Unassigned()
	if ev.OldValue != nil {
		if uid, ok := ev.OldValue.Fields["assignedTo"].(string); ok {
			before = taskdomain.AssignedTo(uid)
		}
	}
	return s.HandleTaskUpdated(ctx, before, after), nil
}

// HandleTaskCreated notifies the assignee of a newly created task.
func (s *Service) HandleTaskCreated(ctx context.Context, task *taskdomain.Task) domain.Outcome {
	if task.Validate() != nil {
		return domain.OutcomeSkippedInvalid
	}
	uid, ok := task.AssignedTo.Get()
	if !ok {
		log.Printf("[Notifier] No assignee for task %s", task.Key())
		return domain.OutcomeSkippedUnassigned
	}
	return s.deliver(ctx, domain.TriggerCreated, task, uid)
}

// HandleTaskUpdated notifies only when the assignee is set and differs from
// the previous version. Pure field edits never re-trigger a push.
func (s *Service) HandleTaskUpdated(ctx context.Context, before taskdomain.Assignee, after *taskdomain.Task) domain.Outcome {
	if after.Validate() != nil {
		return domain.OutcomeSkippedInvalid
	}
	uid, ok := after.AssignedTo.Get()
	if !ok {
		return domain.OutcomeSkippedUnassigned
	}
	if prev, _ := before.Get(); prev == uid {
		return domain.OutcomeSkippedUnchanged
	}
	return s.deliver(ctx, domain.TriggerUpdated, after, uid)
}

func (s *Service) deliver(ctx context.Context, trigger domain.Trigger, task *taskdomain.Task, uid string) domain.Outcome {
	key := task.Key()

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		log.Printf("[Notifier] Error looking up user %s for task %s: %v", uid, key, err)
		s.record(ctx, trigger, key, uid, domain.OutcomeFailed, err)
		return domain.OutcomeFailed
	}
	if user == nil {
		log.Printf("[Notifier] Assigned user %s not found, skipping task %s", uid, key)
		s.record(ctx, trigger, key, uid, domain.OutcomeSkippedNoUser, nil)
		return domain.OutcomeSkippedNoUser
	}
	token, ok := user.PushCredential()
	if !ok {
		log.Printf("[Notifier] No FCM token for user %s, skipping task %s", uid, key)
		s.record(ctx, trigger, key, uid, domain.OutcomeSkippedNoCredential, nil)
		return domain.OutcomeSkippedNoCredential
	}

	err = s.push.SendToDevice(ctx, token, fcm.NotificationData{
		Title: s.messages.AssignedTitle,
		Body:  task.Title,
		Data: map[string]string{
			"projectId": key.ProjectID,
			"taskId":    key.TaskID,
		},
	})
	if err != nil {
		if errors.Is(err, fcm.ErrInvalidToken) {
			log.Printf("[Notifier] Token %s for user %s rejected: %v", authdomain.MaskToken(token), uid, err)
		} else {
			log.Printf("[Notifier] Error sending notification for task %s to %s: %v", key, uid, err)
		}
		s.record(ctx, trigger, key, uid, domain.OutcomeFailed, err)
		return domain.OutcomeFailed
	}

	log.Printf("[Notifier] Notification sent for task %s to user %s (%s)", key, uid, trigger)
	s.record(ctx, trigger, key, uid, domain.OutcomeSent, nil)
	return domain.OutcomeSent
}

// record writes the audit row; failures are logged only.
func (s *Service) record(ctx context.Context, trigger domain.Trigger, key taskdomain.TaskKey, uid string, outcome domain.Outcome, sendErr error) {
	if s.deliveryRepo == nil {
		return
	}
	entry := &domain.DeliveryLog{
		ID:        uuid.New().String(),
		ProjectID: key.ProjectID,
		TaskID:    key.TaskID,
		UserID:    uid,
		Trigger:   trigger,
		Outcome:   outcome,
		CreatedAt: s.now(),
	}
	if sendErr != nil {
		entry.Error = fmt.Sprintf("%v", sendErr)
	}
	if err := s.deliveryRepo.Create(ctx, entry); err != nil {
		log.Printf("[Notifier] Failed to record delivery for task %s: %v", key, err)
	}
}
