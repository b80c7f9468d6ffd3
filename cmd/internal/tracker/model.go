// Package tracker implements the job-application pipeline: CRUD, stage
// progression with timeline history, and interview scheduling queries.
package tracker

import (
	"time"

	"placemate/cmd/identity"
)

// Pipeline stages, in progression order.
const (
	StageApplied  = "applied"
	StageOA       = "oa"
	StageTech     = "tech"
	StageHR       = "hr"
	StageOffer    = "offer"
	StageRejected = "rejected"
)

// Application lifecycle statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Job types.
const (
	JobFullTime   = "full-time"
	JobInternship = "internship"
	JobContract   = "contract"
)

// StageOrder lists stages in pipeline order; analytics conversion rates walk it.
var StageOrder = []string{StageApplied, StageOA, StageTech, StageHR, StageOffer}

var stageLabels = map[string]string{
	StageApplied:  "Applied",
	StageOA:       "Online Assessment",
	StageTech:     "Technical Round",
	StageHR:       "HR Round",
	StageOffer:    "Offer",
	StageRejected: "Rejected",
}

// StageLabel returns the display label for a stage key, or the key itself
// for unknown values.
func StageLabel(stage string) string {
	if l, ok := stageLabels[stage]; ok {
		return l
	}
	return stage
}

// ValidStage reports whether stage is a known pipeline stage.
func ValidStage(stage string) bool {
	_, ok := stageLabels[stage]
	return ok
}

func validJobType(jt string) bool {
	switch jt {
	case JobFullTime, JobInternship, JobContract:
		return true
	}
	return false
}

// Timeline event kinds.
const (
	EventCreated     = "created"
	EventStageChange = "stage_change"
	EventNote        = "note"
)

// TimelineEvent is one entry in an application's history. Persisted as JSONB.
type TimelineEvent struct {
	Event string    `json:"event"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Note  string    `json:"note,omitempty"`
}

// Contact is a recruiter or referral attached to an application. Persisted as JSONB.
type Contact struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Application is one tracked job application.
type Application struct {
	ID     string `json:"id"`
	UserID string `json:"-"`

	CompanyName string  `json:"companyName"`
	CompanyLogo *string `json:"companyLogo,omitempty"`
	Role        string  `json:"role"`
	Location    string  `json:"location,omitempty"`
	JobType     string  `json:"jobType"`
	Salary      *string `json:"salary,omitempty"`

	Stage  string `json:"stage"`
	Status string `json:"status"`

	AppliedDate       time.Time  `json:"appliedDate"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	NextInterviewDate *time.Time `json:"nextInterviewDate,omitempty"`

	Source string  `json:"source,omitempty"`
	JobURL *string `json:"jobUrl,omitempty"`
	Notes  string  `json:"notes,omitempty"`

	Timeline []TimelineEvent `json:"timeline"`
	Contacts []Contact       `json:"contacts"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func invalid(op, msg string) error {
	return identity.OpError{Op: op, Kind: identity.ErrInvalidInput, Msg: msg}
}
