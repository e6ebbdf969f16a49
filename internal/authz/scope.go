package authz

import (
	"database/sql"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
	"github.com/pkg/errors"
)

// ScopeResolver turns an authenticated user into an Identity by
// resolving the school their role ties them to: school admins through
// the school record matching their email, staff and managers through
// their staff profile, students through their student profile.
type ScopeResolver struct {
	schools  repository.SchoolRepository
	staff    repository.StaffRepository
	students repository.StudentRepository
}

func NewScopeResolver(schools repository.SchoolRepository, staff repository.StaffRepository, students repository.StudentRepository) *ScopeResolver {
	return &ScopeResolver{schools: schools, staff: staff, students: students}
}

// Resolve builds the Identity for a user. A missing profile leaves
// SchoolID empty rather than failing: such an account simply has no
// school scope and every scoped check will deny it.
func (s *ScopeResolver) Resolve(user models.User) (Identity, error) {
	id := Identity{UserID: user.ID, Email: user.Email, Role: user.Role}

	switch user.Role {
	case models.RoleRoot:
		// Root is unscoped.
	case models.RoleSchoolAdmin:
		school, err := s.schools.GetSchoolByEmail(user.Email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Identity{}, errors.Wrap(err, "resolving school scope")
		}
		id.SchoolID = school.ID
	case models.RoleManager, models.RoleStaff:
		staff, err := s.staff.GetStaffByUserID(user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Identity{}, errors.Wrap(err, "resolving staff scope")
		}
		id.SchoolID = staff.SchoolID
	case models.RoleStudent:
		student, err := s.students.GetStudentByUserID(user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Identity{}, errors.Wrap(err, "resolving student scope")
		}
		id.SchoolID = student.SchoolID
	}

	return id, nil
}
