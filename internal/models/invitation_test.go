package models

import (
	"testing"
	"time"
)

func TestInvitationValidOn(t *testing.T) {
	now := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name    string
		expires time.Time
		valid   bool
	}{
		// Expiry is compared by calendar date, not exact instant: a
		// code expiring earlier the same day still validates.
		{"expires later today", now.Add(2 * time.Hour), true},
		{"expired earlier today", now.Add(-3 * time.Hour), true},
		{"expires tomorrow", now.Add(24 * time.Hour), true},
		{"expired yesterday", now.Add(-24 * time.Hour), false},
		{"expires in 31 days", now.Add(31 * 24 * time.Hour), true},
		{"issued 32 days ago", now.Add(-32 * 24 * time.Hour).Add(31 * 24 * time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code := InvitationCode{Code: "abc", Purpose: PurposeStaff, ExpiresAt: tc.expires.Unix()}
			if got := code.ValidOn(now); got != tc.valid {
				t.Errorf("ValidOn = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestPurposeRegistrationRole(t *testing.T) {
	cases := map[InvitePurpose]Role{
		PurposeStaff:    RoleStaff,
		PurposeStudents: RoleStudent,
		PurposeAttendee: RoleAttendee,
	}
	for purpose, want := range cases {
		if got := purpose.RegistrationRole(); got != want {
			t.Errorf("purpose %s: got role %s, want %s", purpose, got, want)
		}
	}
}

func TestPurposeValidity(t *testing.T) {
	for _, purpose := range []InvitePurpose{PurposeStaff, PurposeStudents, PurposeAttendee} {
		if !purpose.IsValid() {
			t.Errorf("purpose %s should be valid", purpose)
		}
	}
	if InvitePurpose("teachers").IsValid() {
		t.Error("unknown purpose should be invalid")
	}
}
