// Package reminder implements scheduled follow-ups: interview prep,
// application deadlines and custom nudges, with completion tracking.
package reminder

import (
	"time"

	"placemate/cmd/identity"
)

// Reminder kinds.
const (
	TypeInterview = "interview"
	TypeDeadline  = "deadline"
	TypeFollowUp  = "follow-up"
	TypeCustom    = "custom"
)

func validType(t string) bool {
	switch t {
	case TypeInterview, TypeDeadline, TypeFollowUp, TypeCustom:
		return true
	}
	return false
}

// Reminder is one scheduled follow-up, optionally tied to an application.
type Reminder struct {
	ID     string `json:"id"`
	UserID string `json:"-"`

	ApplicationID *string `json:"applicationId,omitempty"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Type          string  `json:"type"`

	ReminderDate time.Time  `json:"reminderDate"`
	IsCompleted  bool       `json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func invalid(op, msg string) error {
	return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: msg}
}
