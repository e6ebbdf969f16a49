package registration

import (
	"errors"
	"testing"
	"time"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type fakeInvites struct {
	codes map[models.InvitePurpose]models.InvitationCode
}

func (f *fakeInvites) ActiveCode(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error) {
	code, ok := f.codes[purpose]
	if !ok {
		return models.InvitationCode{}, models.ErrInvalidCode
	}
	return code, nil
}

type fakeUsers struct {
	repository.UserRepository
	emails map[string]bool
}

func (f *fakeUsers) EmailExists(email string) (bool, error) {
	return f.emails[email], nil
}

type fakeStudents struct {
	repository.StudentRepository
	matricules map[string]bool
}

func (f *fakeStudents) MatriculeExists(matricule string) (bool, error) {
	return f.matricules[matricule], nil
}

type fakeSchools struct {
	repository.SchoolRepository
	names map[string]bool
}

func (f *fakeSchools) SchoolNameExists(name string) (bool, error) {
	return f.names[name], nil
}

// fakeAccounts records the profiles it was asked to create and can be
// primed to fail with a constraint error, simulating a write racing
// past the existence checks.
type fakeAccounts struct {
	createErr error

	staff     []models.StaffMember
	students  []models.Student
	attendees []models.ExternalAttendee
	schools   []models.School
}

func (f *fakeAccounts) CreateStaffAccount(user models.User, staff models.StaffMember) (models.User, error) {
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	user.ID = "user-1"
	f.staff = append(f.staff, staff)
	return user, nil
}

func (f *fakeAccounts) CreateStudentAccount(user models.User, student models.Student) (models.User, error) {
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	user.ID = "user-1"
	f.students = append(f.students, student)
	return user, nil
}

func (f *fakeAccounts) CreateAttendeeAccount(user models.User, attendee models.ExternalAttendee) (models.User, error) {
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	user.ID = "user-1"
	f.attendees = append(f.attendees, attendee)
	return user, nil
}

func (f *fakeAccounts) CreateSchoolAccount(user models.User, school models.School) (models.User, models.School, error) {
	if f.createErr != nil {
		return models.User{}, models.School{}, f.createErr
	}
	user.ID = "user-1"
	school.ID = "school-1"
	f.schools = append(f.schools, school)
	return user, school, nil
}

func allInvites() *fakeInvites {
	expiry := time.Now().Add(24 * time.Hour).Unix()
	return &fakeInvites{codes: map[models.InvitePurpose]models.InvitationCode{
		models.PurposeStaff:    {Code: "aaaaaaaaaaaaaaaa", Purpose: models.PurposeStaff, ExpiresAt: expiry, SchoolID: "school-1"},
		models.PurposeStudents: {Code: "bbbbbbbbbbbbbbbb", Purpose: models.PurposeStudents, ExpiresAt: expiry, SchoolID: "school-1"},
		models.PurposeAttendee: {Code: "cccccccccccccccc", Purpose: models.PurposeAttendee, ExpiresAt: expiry, SchoolID: "school-1"},
	}}
}

func newTestService(invites *fakeInvites, users *fakeUsers, students *fakeStudents, accounts *fakeAccounts) *Service {
	if users == nil {
		users = &fakeUsers{emails: map[string]bool{}}
	}
	if students == nil {
		students = &fakeStudents{matricules: map[string]bool{}}
	}
	if accounts == nil {
		accounts = &fakeAccounts{}
	}
	return NewService(invites, users, students, &fakeSchools{names: map[string]bool{}}, accounts)
}

func staffForm() Form {
	return Form{
		Email:     "jane.doe@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "s3cret",
		Matricule: "STF-001",
		Phone:     "123456789",
	}
}

func studentForm() Form {
	f := staffForm()
	f.Matricule = "STU-001"
	f.Class = "L3-INFO"
	f.Speciality = "networks"
	return f
}

func TestRegisterAssignsRoleByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		form Form
		want models.Role
	}{
		{KindStaff, staffForm(), models.RoleStaff},
		{KindStudent, studentForm(), models.RoleStudent},
		{KindAttendee, staffForm(), models.RoleAttendee},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			accounts := &fakeAccounts{}
			svc := newTestService(allInvites(), nil, nil, accounts)

			user, err := svc.Register(tc.kind, "school-1", tc.form)
			if err != nil {
				t.Fatalf("Register: %v", err)
			}
			if user.Role != tc.want {
				t.Errorf("role = %v, want %v", user.Role, tc.want)
			}
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tc.form.Password)) != nil {
				t.Error("password hash does not verify against the submitted password")
			}
		})
	}
}

func TestRegisterWritesProfileForTrack(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := newTestService(allInvites(), nil, nil, accounts)

	if _, err := svc.Register(KindStudent, "school-1", studentForm()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(accounts.students) != 1 {
		t.Fatalf("student profiles created = %d, want 1", len(accounts.students))
	}
	student := accounts.students[0]
	if student.Matricule != "STU-001" || student.SchoolID != "school-1" || student.Class != "L3-INFO" {
		t.Errorf("unexpected student profile: %+v", student)
	}
}

func TestRegisterWithoutInvitation(t *testing.T) {
	svc := newTestService(&fakeInvites{codes: map[models.InvitePurpose]models.InvitationCode{}}, nil, nil, nil)

	_, err := svc.Register(KindStaff, "school-1", staffForm())
	assertRejection(t, err, ReasonNoInvitation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &fakeUsers{emails: map[string]bool{"jane.doe@example.com": true}}
	svc := newTestService(allInvites(), users, nil, nil)

	_, err := svc.Register(KindStaff, "school-1", staffForm())
	assertRejection(t, err, ReasonDuplicateEmail)
}

func TestRegisterDuplicateMatricule(t *testing.T) {
	students := &fakeStudents{matricules: map[string]bool{"STU-001": true}}
	svc := newTestService(allInvites(), nil, students, nil)

	_, err := svc.Register(KindStudent, "school-1", studentForm())
	assertRejection(t, err, ReasonDuplicateMatricule)
}

func TestRegisterInvalidFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Form)
	}{
		{"missing email", func(f *Form) { f.Email = "" }},
		{"malformed email", func(f *Form) { f.Email = "not-an-address" }},
		{"missing password", func(f *Form) { f.Password = "" }},
		{"missing first name", func(f *Form) { f.FirstName = "  " }},
		{"missing phone", func(f *Form) { f.Phone = "" }},
		{"staff missing matricule", func(f *Form) { f.Matricule = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := staffForm()
			tc.mutate(&form)
			svc := newTestService(allInvites(), nil, nil, nil)

			_, err := svc.Register(KindStaff, "school-1", form)
			assertRejection(t, err, ReasonInvalidFields)
		})
	}
}

func TestRegisterStudentMissingClass(t *testing.T) {
	form := studentForm()
	form.Class = ""
	svc := newTestService(allInvites(), nil, nil, nil)

	_, err := svc.Register(KindStudent, "school-1", form)
	assertRejection(t, err, ReasonInvalidFields)
}

// Checks run before validation but an insert can still collide with a
// concurrent registration; the constraint error must surface as the
// same rejection the check would have produced.
func TestRegisterConstraintRaceMapsToRejection(t *testing.T) {
	cases := []struct {
		name      string
		createErr error
		want      Reason
	}{
		{"email", models.ErrDuplicateEmail, ReasonDuplicateEmail},
		{"matricule", models.ErrDuplicateMatricule, ReasonDuplicateMatricule},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := &fakeAccounts{createErr: tc.createErr}
			svc := newTestService(allInvites(), nil, nil, accounts)

			_, err := svc.Register(KindStudent, "school-1", studentForm())
			assertRejection(t, err, tc.want)
		})
	}
}

func TestRegisterStorageFaultPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	accounts := &fakeAccounts{createErr: boom}
	svc := newTestService(allInvites(), nil, nil, accounts)

	_, err := svc.Register(KindStaff, "school-1", staffForm())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if _, ok := RejectionReason(err); ok {
		t.Error("storage fault should not read as a rejection")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := newTestService(allInvites(), nil, nil, accounts)

	form := staffForm()
	form.Email = "  Jane.Doe@Example.COM "
	user, err := svc.Register(KindStaff, "school-1", form)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "jane.doe@example.com" {
		t.Errorf("email = %q, want lowercased trimmed form", user.Email)
	}
}

func schoolForm() SchoolForm {
	return SchoolForm{
		Email:    "admin@polytech.example.com",
		Name:     "Polytech",
		Password: "s3cret",
		Address1: "1 Campus Way",
		Phone:    "987654321",
	}
}

func TestRegisterSchool(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(allInvites(), &fakeUsers{emails: map[string]bool{}},
		&fakeStudents{matricules: map[string]bool{}}, &fakeSchools{names: map[string]bool{}}, accounts)

	user, school, err := svc.RegisterSchool(schoolForm())
	if err != nil {
		t.Fatalf("RegisterSchool: %v", err)
	}
	if user.Role != models.RoleSchoolAdmin {
		t.Errorf("role = %v, want %v", user.Role, models.RoleSchoolAdmin)
	}
	if school.Name != "Polytech" {
		t.Errorf("school name = %q", school.Name)
	}
	if len(accounts.schools) != 1 {
		t.Errorf("school rows created = %d, want 1", len(accounts.schools))
	}
}

func TestRegisterSchoolDuplicateName(t *testing.T) {
	schools := &fakeSchools{names: map[string]bool{"Polytech": true}}
	svc := NewService(allInvites(), &fakeUsers{emails: map[string]bool{}},
		&fakeStudents{matricules: map[string]bool{}}, schools, &fakeAccounts{})

	_, _, err := svc.RegisterSchool(schoolForm())
	assertRejection(t, err, ReasonDuplicateSchool)
}

func TestRegisterSchoolInvalidFields(t *testing.T) {
	form := schoolForm()
	form.Address1 = ""
	svc := NewService(allInvites(), &fakeUsers{emails: map[string]bool{}},
		&fakeStudents{matricules: map[string]bool{}}, &fakeSchools{names: map[string]bool{}}, &fakeAccounts{})

	_, _, err := svc.RegisterSchool(form)
	assertRejection(t, err, ReasonInvalidFields)
}

func assertRejection(t *testing.T, err error, want Reason) {
	t.Helper()
	reason, ok := RejectionReason(err)
	if !ok {
		t.Fatalf("err = %v, want rejection %q", err, want)
	}
	if reason != want {
		t.Fatalf("reason = %q, want %q", reason, want)
	}
}
