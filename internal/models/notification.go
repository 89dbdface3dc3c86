package models

import (
	"errors"
	"fmt"
	"time"
)

// ActionStatus is the recipient-facing lifecycle of a match notification.
type ActionStatus string

const (
	ActionNone      ActionStatus = "none"
	ActionApplied   ActionStatus = "applied"
	ActionAccepted  ActionStatus = "accepted"
	ActionRejected  ActionStatus = "rejected"
	ActionDismissed ActionStatus = "dismissed"
)

// ErrInvalidTransition is returned when a status change is not allowed by the state machine.
var ErrInvalidTransition = errors.New("invalid action status transition")

var transitions = map[ActionStatus][]ActionStatus{
	ActionNone:    {ActionApplied, ActionDismissed},
	ActionApplied: {ActionAccepted, ActionRejected},
}

// Valid reports whether s is one of the known statuses.
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionNone, ActionApplied, ActionAccepted, ActionRejected, ActionDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ActionStatus) IsTerminal() bool {
	return s == ActionAccepted || s == ActionRejected || s == ActionDismissed
}

// CanTransition reports whether s -> next is allowed.
func (s ActionStatus) CanTransition(next ActionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition (wrapped with both states) when s -> next is not allowed.
func ValidateTransition(from, to ActionStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is final", ErrInvalidTransition, from)
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// NotificationKind labels what produced a notification.
type NotificationKind string

// KindCourseMatch is created by the push flow when a new course matches a tutor.
const KindCourseMatch NotificationKind = "course_match"

// NotificationRecord is the persisted in-app notification for one recipient.
type NotificationRecord struct {
	ID           string                 `json:"id"`
	RecipientID  string                 `json:"recipient_id"`
	CandidateID  string                 `json:"candidate_id"`
	TargetID     string                 `json:"target_id"`
	Kind         NotificationKind       `json:"kind"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	ActionStatus ActionStatus           `json:"action_status"`
	IsRead       bool                   `json:"is_read"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// IdempotencyKey is the (candidate, target) pair that may only be notified once.
func (n *NotificationRecord) IdempotencyKey() string {
	return n.CandidateID + "\x00" + n.TargetID
}

// DispatchAttempt records what happened for one recipient during a fan-out. It is not persisted.
type DispatchAttempt struct {
	RecipientID    string `json:"recipient_id"`
	CandidateID    string `json:"candidate_id"`
	NotificationID string `json:"notification_id,omitempty"`
	Persisted      bool   `json:"persisted"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	EmailAttempted bool   `json:"email_attempted"`
	EmailSent      bool   `json:"email_sent"`
	EmailError     string `json:"email_error,omitempty"`
}
