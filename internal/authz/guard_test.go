package authz

import (
	"testing"

	"github.com/eventerx/eventerx-api/internal/models"
)

func TestAuthorize(t *testing.T) {
	managerA := Identity{UserID: "u1", Role: models.RoleManager, SchoolID: "school-a"}
	adminA := Identity{UserID: "u2", Role: models.RoleSchoolAdmin, SchoolID: "school-a"}
	studentA := Identity{UserID: "u3", Role: models.RoleStudent, SchoolID: "school-a"}
	root := Identity{UserID: "u0", Role: models.RoleRoot}

	cases := []struct {
		name     string
		id       Identity
		required []models.Role
		resource string
		allowed  bool
		reason   DenyReason
	}{
		{
			name:     "manager in own school",
			id:       managerA,
			required: ManagementRoles,
			resource: "school-a",
			allowed:  true,
		},
		{
			name:     "manager against another school",
			id:       managerA,
			required: ManagementRoles,
			resource: "school-b",
			reason:   DenyScope,
		},
		{
			name:     "admin without resource scope",
			id:       adminA,
			required: ManagementRoles,
			allowed:  true,
		},
		{
			name:     "student on management surface",
			id:       studentA,
			required: ManagementRoles,
			reason:   DenyRole,
		},
		{
			name:     "wrong role reported before wrong scope",
			id:       studentA,
			required: ManagementRoles,
			resource: "school-b",
			reason:   DenyRole,
		},
		{
			name:     "root passes role check",
			id:       root,
			required: []models.Role{models.RoleManager},
			allowed:  true,
		},
		{
			name:     "root passes scope check",
			id:       root,
			required: ManagementRoles,
			resource: "school-b",
			allowed:  true,
		},
		{
			name:     "admin not in manager-only set",
			id:       adminA,
			required: []models.Role{models.RoleManager},
			reason:   DenyRole,
		},
		{
			name:     "unscoped identity against scoped resource",
			id:       Identity{UserID: "u4", Role: models.RoleManager},
			required: ManagementRoles,
			resource: "school-a",
			reason:   DenyScope,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Authorize(tc.id, tc.required, tc.resource)
			if decision.Allowed != tc.allowed {
				t.Fatalf("Allowed = %v, want %v", decision.Allowed, tc.allowed)
			}
			if !tc.allowed && decision.Reason != tc.reason {
				t.Errorf("Reason = %q, want %q", decision.Reason, tc.reason)
			}
		})
	}
}
