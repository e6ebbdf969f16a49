package models

import "time"

// EventProject is an event a school organizes: a fair, an open day, a
// graduation. Commissions split the work it requires.
type EventProject struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Venue       string    `json:"venue"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	DueDate     time.Time `json:"due_date"`
	Budget      int64     `json:"budget"`
	IsActive    bool      `json:"is_active"`
	Private     bool      `json:"private"`
	SchoolID    string    `json:"school_id"`
}

// Team groups staff members of a school and takes on commissions.
type Team struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SchoolID  string    `json:"school_id"`
	CreatedAt time.Time `json:"created_at"`
}
