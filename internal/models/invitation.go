package models

import "time"

// InvitePurpose is the registration track an invitation code applies to.
// The strings are persisted; "students" (plural) is the stored value.
type InvitePurpose string

const (
	PurposeStaff    InvitePurpose = "staff"
	PurposeStudents InvitePurpose = "students"
	PurposeAttendee InvitePurpose = "attendee"
)

// IsValid reports whether p is one of the defined purposes.
func (p InvitePurpose) IsValid() bool {
	switch p {
	case PurposeStaff, PurposeStudents, PurposeAttendee:
		return true
	}
	return false
}

// RegistrationRole maps a purpose to the role the redeemed account gets.
func (p InvitePurpose) RegistrationRole() Role {
	switch p {
	case PurposeStudents:
		return RoleStudent
	case PurposeAttendee:
		return RoleAttendee
	default:
		return RoleStaff
	}
}

// InvitationCode grants scoped permission to self-register under a
// school for a given purpose. At most one code exists per
// (school, purpose) pair and a code is never rotated once issued.
type InvitationCode struct {
	Code      string        `json:"code"`
	Purpose   InvitePurpose `json:"purpose"`
	ExpiresAt int64         `json:"expires_at"` // epoch seconds
	SchoolID  string        `json:"school_id"`
}

// ValidOn reports whether the code is still redeemable at the given
// instant. Expiry is compared at calendar-day granularity: a code whose
// expiry falls on today's date is still valid, one day past is not.
func (c InvitationCode) ValidOn(now time.Time) bool {
	expiry := time.Unix(c.ExpiresAt, 0).In(now.Location())
	ey, em, ed := expiry.Date()
	ny, nm, nd := now.Date()
	expiryDay := time.Date(ey, em, ed, 0, 0, 0, 0, now.Location())
	nowDay := time.Date(ny, nm, nd, 0, 0, 0, 0, now.Location())
	return !nowDay.After(expiryDay)
}
