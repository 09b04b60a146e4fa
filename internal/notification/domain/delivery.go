package domain

import "time"

// Trigger identifies which document lifecycle event started a delivery
type Trigger string

const (
	TriggerCreated Trigger = "created"
	TriggerUpdated Trigger = "updated"
)

// Outcome is the terminal state of one handled event
type Outcome string

const (
	OutcomeSent                Outcome = "sent"
	OutcomeFailed              Outcome = "failed"
	OutcomeSkippedUnassigned   Outcome = "skipped_unassigned"
	OutcomeSkippedUnchanged    Outcome = "skipped_unchanged"
	OutcomeSkippedNoUser       Outcome = "skipped_no_user"
	OutcomeSkippedNoCredential Outcome = "skipped_no_credential"
	OutcomeSkippedInvalid      Outcome = "skipped_invalid"
	OutcomeIgnored             Outcome = "ignored" // not a task create/update event
)

// Attempted reports whether a push send was tried.
func (o Outcome) Attempted() bool {
	return o == OutcomeSent || o == OutcomeFailed
}

// DeliveryLog is one audit row per qualifying event
type DeliveryLog struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ProjectID string    `json:"project_id" gorm:"index;not null"`
	TaskID    string    `json:"task_id" gorm:"index;not null"`
	UserID    string    `json:"user_id" gorm:"index"`
	Trigger   Trigger   `json:"trigger" gorm:"not null"`
	Outcome   Outcome   `json:"outcome" gorm:"not null"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
