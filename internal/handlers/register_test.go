package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/registration"
	"github.com/eventerx/eventerx-api/internal/repository"
)

// memStore is an in-memory stand-in for the account storage: existence
// checks and creations share the same maps, so a second registration
// with the same email sees the first one.
type memStore struct {
	repository.UserRepository
	repository.StudentRepository
	repository.SchoolRepository

	emails     map[string]bool
	matricules map[string]bool
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{emails: map[string]bool{}, matricules: map[string]bool{}}
}

func (m *memStore) EmailExists(email string) (bool, error) {
	return m.emails[email], nil
}

func (m *memStore) MatriculeExists(matricule string) (bool, error) {
	return m.matricules[matricule], nil
}

func (m *memStore) SchoolNameExists(name string) (bool, error) {
	return false, nil
}

func (m *memStore) createUser(user models.User) models.User {
	m.nextID++
	user.ID = "user-" + strconv.Itoa(m.nextID)
	m.emails[user.Email] = true
	return user
}

func (m *memStore) CreateStaffAccount(user models.User, staff models.StaffMember) (models.User, error) {
	m.matricules[staff.Matricule] = true
	return m.createUser(user), nil
}

func (m *memStore) CreateStudentAccount(user models.User, student models.Student) (models.User, error) {
	m.matricules[student.Matricule] = true
	return m.createUser(user), nil
}

func (m *memStore) CreateAttendeeAccount(user models.User, attendee models.ExternalAttendee) (models.User, error) {
	return m.createUser(user), nil
}

func (m *memStore) CreateSchoolAccount(user models.User, school models.School) (models.User, models.School, error) {
	school.ID = "school-1"
	return m.createUser(user), school, nil
}

type staticInvites struct {
	codes map[models.InvitePurpose]models.InvitationCode
}

func (s *staticInvites) ActiveCode(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error) {
	code, ok := s.codes[purpose]
	if !ok || code.SchoolID != schoolID {
		return models.InvitationCode{}, models.ErrInvalidCode
	}
	return code, nil
}

func invitesFor(school string, purposes ...models.InvitePurpose) *staticInvites {
	expiry := time.Now().Add(24 * time.Hour).Unix()
	s := &staticInvites{codes: map[models.InvitePurpose]models.InvitationCode{}}
	for _, p := range purposes {
		s.codes[p] = models.InvitationCode{Code: "deadbeefdeadbeef", Purpose: p, ExpiresAt: expiry, SchoolID: school}
	}
	return s
}

func newRegistrationHandler(store *memStore, invites *staticInvites) *RegistrationHandler {
	service := registration.NewService(invites, store, store, store, store)
	return NewRegistrationHandler(service, zerolog.Nop())
}

func postJSON(t *testing.T, handler http.HandlerFunc, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/register/staff", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func staffBody() map[string]string {
	return map[string]string{
		"school_id":  "school-1",
		"email":      "jane.doe@example.com",
		"first_name": "Jane",
		"last_name":  "Doe",
		"password":   "s3cret",
		"matricule":  "STF-001",
		"phone":      "123456789",
	}
}

func TestRegisterStaffEndpoint(t *testing.T) {
	handler := newRegistrationHandler(newMemStore(), invitesFor("school-1", models.PurposeStaff))

	rec := postJSON(t, handler.RegisterStaff, staffBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID == "" {
		t.Error("response is missing user_id")
	}
	if resp.Email != "jane.doe@example.com" {
		t.Errorf("email = %q", resp.Email)
	}
}

func TestRegisterStaffDuplicateEmail(t *testing.T) {
	handler := newRegistrationHandler(newMemStore(), invitesFor("school-1", models.PurposeStaff))

	if rec := postJSON(t, handler.RegisterStaff, staffBody()); rec.Code != http.StatusCreated {
		t.Fatalf("first registration: status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	body := staffBody()
	body["matricule"] = "STF-002"
	rec := postJSON(t, handler.RegisterStaff, body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second registration: status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != string(registration.ReasonDuplicateEmail) {
		t.Errorf("body = %q, want %q", got, registration.ReasonDuplicateEmail)
	}
}

func TestRegisterStudentWithoutInvitation(t *testing.T) {
	// Staff invites exist, student invites do not; the student page
	// must not open.
	handler := newRegistrationHandler(newMemStore(), invitesFor("school-1", models.PurposeStaff))

	body := staffBody()
	body["class"] = "L3-INFO"
	rec := postJSON(t, handler.RegisterStudent, body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != string(registration.ReasonNoInvitation) {
		t.Errorf("body = %q, want %q", got, registration.ReasonNoInvitation)
	}
}

func TestRegisterRejectsMalformedPayload(t *testing.T) {
	handler := newRegistrationHandler(newMemStore(), invitesFor("school-1", models.PurposeStaff))

	req := httptest.NewRequest(http.MethodPost, "/api/register/staff", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.RegisterStaff(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegisterRequiresSchoolID(t *testing.T) {
	handler := newRegistrationHandler(newMemStore(), invitesFor("school-1", models.PurposeStaff))

	body := staffBody()
	delete(body, "school_id")
	rec := postJSON(t, handler.RegisterStaff, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	handler := newRegistrationHandler(newMemStore(), invitesFor("school-1", models.PurposeStaff))

	body := staffBody()
	body["phone"] = ""
	rec := postJSON(t, handler.RegisterStaff, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != string(registration.ReasonInvalidFields) {
		t.Errorf("body = %q, want %q", got, registration.ReasonInvalidFields)
	}
}
