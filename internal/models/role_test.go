package models

import "testing"

func TestRoleNumbering(t *testing.T) {
	// The numeric role values are persisted; a renumbering would
	// silently change who can do what.
	cases := []struct {
		role Role
		id   int
		name string
	}{
		{RoleRoot, 1, "root"},
		{RoleSchoolAdmin, 2, "school_admin"},
		{RoleManager, 3, "manager"},
		{RoleStudent, 4, "student"},
		{RoleAttendee, 5, "attendee"},
		{RoleStaff, 6, "staff"},
	}
	for _, tc := range cases {
		if int(tc.role) != tc.id {
			t.Errorf("role %s: got id %d, want %d", tc.name, int(tc.role), tc.id)
		}
		if tc.role.String() != tc.name {
			t.Errorf("role %d: got name %q, want %q", int(tc.role), tc.role.String(), tc.name)
		}
		if !tc.role.IsValid() {
			t.Errorf("role %s should be valid", tc.name)
		}
	}
}

func TestRoleValidity(t *testing.T) {
	if Role(0).IsValid() {
		t.Error("zero role should be invalid")
	}
	if Role(7).IsValid() {
		t.Error("role 7 should be invalid")
	}
	if Role(99).String() != "unknown" {
		t.Errorf("unknown role name: got %q", Role(99).String())
	}
}

func TestIsManagement(t *testing.T) {
	for _, role := range []Role{RoleRoot, RoleSchoolAdmin, RoleManager} {
		if !role.IsManagement() {
			t.Errorf("%s should be a management role", role)
		}
	}
	for _, role := range []Role{RoleStudent, RoleStaff, RoleAttendee} {
		if role.IsManagement() {
			t.Errorf("%s should not be a management role", role)
		}
	}
}
