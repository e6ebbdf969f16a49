package models

import "time"

// School is the tenant of the system. Every staff member, student,
// event, team and invitation code belongs to exactly one school, and
// deleting a school cascades to everything it owns.
type School struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Address1  string    `json:"address1"`
	Address2  string    `json:"address2,omitempty"`
	Phone     string    `json:"phone"`
	POBox     string    `json:"pobox,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
