package authz

import "github.com/eventerx/eventerx-api/internal/models"

// DenyReason says which rule a denied request tripped.
type DenyReason string

const (
	// DenyRole: the actor's role is not in the required set.
	DenyRole DenyReason = "forbidden-role"
	// DenyScope: the resource belongs to a different school.
	DenyScope DenyReason = "forbidden-scope"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// Authorize decides whether the actor may perform an operation gated
// on the given roles and, when resourceSchoolID is non-empty, scoped
// to the school owning the resource. Pure function of its inputs.
//
// Root passes every check. Role is evaluated before scope, so a
// wrong-role actor is told "forbidden-role" even when the scope would
// also fail.
func Authorize(id Identity, required []models.Role, resourceSchoolID string) Decision {
	if id.Role == models.RoleRoot {
		return allow()
	}

	roleOK := false
	for _, role := range required {
		if id.Role == role {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return deny(DenyRole)
	}

	if resourceSchoolID != "" && id.SchoolID != resourceSchoolID {
		return deny(DenyScope)
	}

	return allow()
}

// ManagementRoles is the required set for the school management
// surfaces: rosters, events, teams, commissions, invitations.
var ManagementRoles = []models.Role{models.RoleSchoolAdmin, models.RoleManager}
