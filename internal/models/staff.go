package models

import "time"

// StaffMember is the role profile of a staff- or manager-class user.
// The matricule is the school-issued identifier and primary key.
type StaffMember struct {
	Matricule string    `json:"matricule"`
	Phone     string    `json:"phone"`
	UserID    string    `json:"user_id"`
	SchoolID  string    `json:"school_id"`
	TeamID    *string   `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Student is the role profile of a student-class user.
type Student struct {
	Matricule  string    `json:"matricule"`
	Speciality string    `json:"speciality,omitempty"`
	Phone      string    `json:"phone"`
	Class      string    `json:"class"`
	UserID     string    `json:"user_id"`
	SchoolID   string    `json:"school_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExternalAttendee is the minimal profile behind attendee-purpose
// registrations. Attendees hold no management rights and never appear
// on staff rosters.
type ExternalAttendee struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	UserID    string    `json:"user_id"`
	SchoolID  string    `json:"school_id"`
	CreatedAt time.Time `json:"created_at"`
}
