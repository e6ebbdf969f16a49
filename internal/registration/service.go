// Package registration materializes accounts from redeemed invitation
// codes: a user row plus its role profile, created atomically.
package registration

import (
	"net/mail"
	"strings"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Kind selects the registration track.
type Kind string

const (
	KindStaff    Kind = "staff"
	KindStudent  Kind = "student"
	KindAttendee Kind = "attendee"
)

// Purpose maps the track to the invitation purpose that gates it.
func (k Kind) Purpose() models.InvitePurpose {
	switch k {
	case KindStudent:
		return models.PurposeStudents
	case KindAttendee:
		return models.PurposeAttendee
	default:
		return models.PurposeStaff
	}
}

// Reason identifies why a registration was rejected.
type Reason string

const (
	ReasonNoInvitation       Reason = "no-invitation"
	ReasonDuplicateEmail     Reason = "duplicate-email"
	ReasonDuplicateMatricule Reason = "duplicate-matricule"
	ReasonDuplicateSchool    Reason = "duplicate-school"
	ReasonInvalidFields      Reason = "invalid-fields"
)

// Rejection is a user-correctable refusal, as opposed to a storage
// fault.
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string { return string(r.Reason) }

func reject(reason Reason) error { return &Rejection{Reason: reason} }

// RejectionReason unwraps the reason when err is a Rejection.
func RejectionReason(err error) (Reason, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}
	return "", false
}

// Form carries the submitted registration fields. Matricule, Class and
// Speciality only apply to the tracks that use them.
type Form struct {
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Matricule  string
	Phone      string
	Speciality string
	Class      string
}

// SchoolForm carries school self-registration fields.
type SchoolForm struct {
	Email    string
	Name     string
	Password string
	Address1 string
	Address2 string
	Phone    string
	POBox    string
	Website  string
}

// InviteChecker is the slice of the invitation authority registration
// needs: an unexpired code must exist for the school and purpose.
type InviteChecker interface {
	ActiveCode(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error)
}

// Service is the registration workflow.
type Service struct {
	invites  InviteChecker
	users    repository.UserRepository
	students repository.StudentRepository
	schools  repository.SchoolRepository
	accounts repository.AccountRepository
}

func NewService(
	invites InviteChecker,
	users repository.UserRepository,
	students repository.StudentRepository,
	schools repository.SchoolRepository,
	accounts repository.AccountRepository,
) *Service {
	return &Service{
		invites:  invites,
		users:    users,
		students: students,
		schools:  schools,
		accounts: accounts,
	}
}

// Register creates the account for an invited staff member, student or
// attendee. Preconditions run in order and short-circuit: active
// invitation, email free, matricule free (students), fields valid.
// The user row and the role profile are written in one transaction;
// constraint violations racing past the existence checks map back to
// the same duplicate rejections.
func (s *Service) Register(kind Kind, schoolID string, form Form) (models.User, error) {
	if _, err := s.invites.ActiveCode(schoolID, kind.Purpose()); err != nil {
		if errors.Is(err, models.ErrInvalidCode) {
			return models.User{}, reject(ReasonNoInvitation)
		}
		return models.User{}, err
	}

	form.Email = strings.TrimSpace(strings.ToLower(form.Email))

	taken, err := s.users.EmailExists(form.Email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, reject(ReasonDuplicateEmail)
	}

	if kind == KindStudent {
		taken, err := s.students.MatriculeExists(form.Matricule)
		if err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, reject(ReasonDuplicateMatricule)
		}
	}

	if !form.valid(kind) {
		return models.User{}, reject(ReasonInvalidFields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hashing password")
	}

	user := models.User{
		Email:        form.Email,
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		PasswordHash: string(hash),
		Role:         kind.Purpose().RegistrationRole(),
	}

	switch kind {
	case KindStudent:
		user, err = s.accounts.CreateStudentAccount(user, models.Student{
			Matricule:  form.Matricule,
			Speciality: form.Speciality,
			Phone:      form.Phone,
			Class:      form.Class,
			SchoolID:   schoolID,
		})
	case KindAttendee:
		user, err = s.accounts.CreateAttendeeAccount(user, models.ExternalAttendee{
			Phone:    form.Phone,
			SchoolID: schoolID,
		})
	default:
		user, err = s.accounts.CreateStaffAccount(user, models.StaffMember{
			Matricule: form.Matricule,
			Phone:     form.Phone,
			SchoolID:  schoolID,
		})
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			return models.User{}, reject(ReasonDuplicateEmail)
		case errors.Is(err, models.ErrDuplicateMatricule):
			return models.User{}, reject(ReasonDuplicateMatricule)
		}
		return models.User{}, err
	}

	return user, nil
}

// RegisterSchool creates a school tenant and its admin account in one
// transaction. Open to the public; no invitation involved.
func (s *Service) RegisterSchool(form SchoolForm) (models.User, models.School, error) {
	form.Email = strings.TrimSpace(strings.ToLower(form.Email))
	form.Name = strings.TrimSpace(form.Name)

	if !validEmail(form.Email) || form.Name == "" || form.Password == "" ||
		strings.TrimSpace(form.Address1) == "" || strings.TrimSpace(form.Phone) == "" {
		return models.User{}, models.School{}, reject(ReasonInvalidFields)
	}

	taken, err := s.users.EmailExists(form.Email)
	if err != nil {
		return models.User{}, models.School{}, err
	}
	if taken {
		return models.User{}, models.School{}, reject(ReasonDuplicateEmail)
	}

	exists, err := s.schools.SchoolNameExists(form.Name)
	if err != nil {
		return models.User{}, models.School{}, err
	}
	if exists {
		return models.User{}, models.School{}, reject(ReasonDuplicateSchool)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, models.School{}, errors.Wrap(err, "hashing password")
	}

	user := models.User{
		Email:        form.Email,
		PasswordHash: string(hash),
		Role:         models.RoleSchoolAdmin,
	}
	school := models.School{
		Email:    form.Email,
		Name:     form.Name,
		Address1: strings.TrimSpace(form.Address1),
		Address2: strings.TrimSpace(form.Address2),
		Phone:    strings.TrimSpace(form.Phone),
		POBox:    strings.TrimSpace(form.POBox),
		Website:  strings.TrimSpace(form.Website),
	}

	user, school, err = s.accounts.CreateSchoolAccount(user, school)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			return models.User{}, models.School{}, reject(ReasonDuplicateEmail)
		case errors.Is(err, models.ErrDuplicateSchool):
			return models.User{}, models.School{}, reject(ReasonDuplicateSchool)
		}
		return models.User{}, models.School{}, err
	}

	return user, school, nil
}

func (f Form) valid(kind Kind) bool {
	if !validEmail(f.Email) || f.Password == "" || strings.TrimSpace(f.Phone) == "" {
		return false
	}
	if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" {
		return false
	}
	switch kind {
	case KindStudent:
		return strings.TrimSpace(f.Matricule) != "" && strings.TrimSpace(f.Class) != ""
	case KindStaff:
		return strings.TrimSpace(f.Matricule) != ""
	}
	return true
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
