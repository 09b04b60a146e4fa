package repository

import (
	"fmt"
	"time"

	"teamtodo-backend/internal/task/domain"
)

// Firestore field names, shared with the mobile client
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldDueDate     = "dueDate"
	fieldIsCompleted = "isCompleted"
	fieldAssignedTo  = "assignedTo"
	fieldCreatedBy   = "createdBy"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"
	fieldPriority    = "priority"
	fieldSubtasks    = "subtasks"
)

// TaskFromData decodes a task document. data uses the Go types produced by the
// Firestore SDK (string, bool, time.Time, []interface{}, map[string]interface{}).
// Documents without a title are rejected with domain.ErrInvalidTask.
func TaskFromData(projectID, taskID string, data map[string]interface{}) (*domain.Task, error) {
	if data == nil {
		return nil, fmt.Errorf("task %s/%s has no data: %w", projectID, taskID, domain.ErrInvalidTask)
	}

	task := &domain.Task{
		ID:          taskID,
		ProjectID:   projectID,
		Title:       stringField(data, fieldTitle),
		Description: stringField(data, fieldDescription),
		IsCompleted: boolField(data, fieldIsCompleted),
		AssignedTo:  domain.AssignedTo(stringField(data, fieldAssignedTo)),
		CreatedBy:   stringField(data, fieldCreatedBy),
		Priority:    domain.ParsePriority(stringField(data, fieldPriority)),
	}

	if t, ok := timeField(data, fieldDueDate); ok {
		task.DueDate = domain.DueAt(t)
	}
	if t, ok := timeField(data, fieldCreatedAt); ok {
		task.CreatedAt = t
	}
	if t, ok := timeField(data, fieldUpdatedAt); ok {
		task.UpdatedAt = &t
	}

	if items, ok := data[fieldSubtasks].([]interface{}); ok {
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			task.Subtasks = append(task.Subtasks, domain.Subtask{
				ID:          stringField(m, "id"),
				Title:       stringField(m, "title"),
				IsCompleted: boolField(m, "isCompleted"),
			})
		}
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("task %s/%s: %w", projectID, taskID, err)
	}
	return task, nil
}

// taskToData encodes a task for a Firestore create.
func taskToData(task *domain.Task) map[string]interface{} {
	data := map[string]interface{}{
		fieldTitle:       task.Title,
		fieldIsCompleted: task.IsCompleted,
		fieldCreatedBy:   task.CreatedBy,
		fieldCreatedAt:   task.CreatedAt,
		fieldPriority:    string(task.Priority),
		fieldSubtasks:    subtasksToData(task.Subtasks),
	}
	if task.Description != "" {
		data[fieldDescription] = task.Description
	}
	if due, ok := task.DueDate.Get(); ok {
		data[fieldDueDate] = due
	}
	if uid, ok := task.AssignedTo.Get(); ok {
		data[fieldAssignedTo] = uid
	}
	if task.UpdatedAt != nil {
		data[fieldUpdatedAt] = *task.UpdatedAt
	}
	return data
}

func subtasksToData(subtasks []domain.Subtask) []interface{} {
	out := make([]interface{}, 0, len(subtasks))
	for _, s := range subtasks {
		out = append(out, map[string]interface{}{
			"id":          s.ID,
			"title":       s.Title,
			"isCompleted": s.IsCompleted,
		})
	}
	return out
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func boolField(data map[string]interface{}, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func timeField(data map[string]interface{}, key string) (time.Time, bool) {
	switch v := data[key].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	}
	return time.Time{}, false
}
