package models

import "time"

// CommissionState tracks a commission through its life.
type CommissionState string

const (
	CommissionPending    CommissionState = "pending"
	CommissionInProgress CommissionState = "in_progress"
	CommissionDone       CommissionState = "done"
)

func (s CommissionState) IsValid() bool {
	switch s {
	case CommissionPending, CommissionInProgress, CommissionDone:
		return true
	}
	return false
}

// Commission priorities, low to high.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Commission is a sub-task of an event. It stays unassigned
// (TeamID nil) until a team explicitly takes it on.
type Commission struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	StartDate   time.Time       `json:"start_date"`
	DueDate     time.Time       `json:"due_date"`
	Priority    int             `json:"priority"`
	State       CommissionState `json:"state"`
	EventID     string          `json:"event_id"`
	TeamID      *string         `json:"team_id,omitempty"`
}
