package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTask  = errors.New("invalid task")
	ErrUnauthorized = errors.New("unauthorized")
)

// Priority represents task priority level
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority maps a wire value to a Priority, defaulting to Medium.
func ParsePriority(p string) Priority {
	switch p {
	case "High", "high":
		return PriorityHigh
	case "Low", "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// TaskKey uniquely identifies a task across projects.
type TaskKey struct {
	ProjectID string `json:"projectId"`
	TaskID    string `json:"taskId"`
}

func (k TaskKey) String() string {
	return k.ProjectID + "/" + k.TaskID
}

// Subtask is a checklist item inside a task
type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// Task is a unit of work inside a project, stored at projects/{projectId}/tasks/{taskId}
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     DueDate    `json:"dueDate"`
	IsCompleted bool       `json:"isCompleted"`
	AssignedTo  Assignee   `json:"assignedTo"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Priority    Priority   `json:"priority"`
	Subtasks    []Subtask  `json:"subtasks"`
}

func (t *Task) Key() TaskKey {
	return TaskKey{ProjectID: t.ProjectID, TaskID: t.ID}
}

// Validate reports ErrInvalidTask for documents missing required fields.
func (t *Task) Validate() error {
	if t.ID == "" || t.Title == "" {
		return ErrInvalidTask
	}
	return nil
}

// DueDate is either "no deadline" or a concrete instant.
type DueDate struct {
	at  time.Time
	set bool
}

func NoDueDate() DueDate { return DueDate{} }

func DueAt(t time.Time) DueDate { return DueDate{at: t, set: true} }

// Get returns the instant and whether a deadline is set.
func (d DueDate) Get() (time.Time, bool) { return d.at, d.set }

func (d DueDate) IsSet() bool { return d.set }

func (d DueDate) Equal(o DueDate) bool {
	if d.set != o.set {
		return false
	}
	return !d.set || d.at.Equal(o.at)
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	if !d.set {
		return []byte("null"), nil
	}
	return json.Marshal(d.at.Format(time.RFC3339))
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = NoDueDate()
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return err
	}
	*d = DueAt(t)
	return nil
}

// Assignee is either unassigned or a user identifier.
type Assignee struct {
	userID string
}

func Unassigned() Assignee { return Assignee{} }

// AssignedTo returns an Assignee for uid; an empty uid means unassigned.
func AssignedTo(uid string) Assignee { return Assignee{userID: uid} }

func (a Assignee) Get() (string, bool) { return a.userID, a.userID != "" }

func (a Assignee) IsAssigned() bool { return a.userID != "" }

func (a Assignee) MarshalJSON() ([]byte, error) {
	if a.userID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(a.userID)
}

func (a *Assignee) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*a = Unassigned()
		return nil
	}
	*a = AssignedTo(*s)
	return nil
}
