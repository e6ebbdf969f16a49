package models

// Role is the numeric role stored on every user account. The values
// are persisted in the database and embedded in tokens, so they must
// not be renumbered.
type Role int

const (
	RoleRoot        Role = 1
	RoleSchoolAdmin Role = 2
	RoleManager     Role = 3
	RoleStudent     Role = 4
	RoleAttendee    Role = 5
	RoleStaff       Role = 6
)

var roleNames = map[Role]string{
	RoleRoot:        "root",
	RoleSchoolAdmin: "school_admin",
	RoleManager:     "manager",
	RoleStudent:     "student",
	RoleAttendee:    "attendee",
	RoleStaff:       "staff",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsManagement reports whether the role may administer a school:
// rosters, invitations, events, teams and commissions.
func (r Role) IsManagement() bool {
	return r == RoleRoot || r == RoleSchoolAdmin || r == RoleManager
}
