package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/invitation"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
)

type codeKey struct {
	school  string
	purpose models.InvitePurpose
}

type memInviteRepo struct {
	byCode map[string]models.InvitationCode
	byKey  map[codeKey]models.InvitationCode
}

func newMemInviteRepo() *memInviteRepo {
	return &memInviteRepo{
		byCode: map[string]models.InvitationCode{},
		byKey:  map[codeKey]models.InvitationCode{},
	}
}

func (r *memInviteRepo) CreateCode(code models.InvitationCode) (models.InvitationCode, error) {
	key := codeKey{school: code.SchoolID, purpose: code.Purpose}
	if _, ok := r.byKey[key]; ok {
		return models.InvitationCode{}, repository.ErrCodeAlreadyIssued
	}
	r.byCode[code.Code] = code
	r.byKey[key] = code
	return code, nil
}

func (r *memInviteRepo) GetByCode(code string) (models.InvitationCode, error) {
	invite, ok := r.byCode[code]
	if !ok {
		return models.InvitationCode{}, sql.ErrNoRows
	}
	return invite, nil
}

func (r *memInviteRepo) GetBySchoolAndPurpose(schoolID string, purpose models.InvitePurpose) (models.InvitationCode, error) {
	invite, ok := r.byKey[codeKey{school: schoolID, purpose: purpose}]
	if !ok {
		return models.InvitationCode{}, sql.ErrNoRows
	}
	return invite, nil
}

type staticSchools struct {
	repository.SchoolRepository
	schools map[string]models.School
}

func (s *staticSchools) GetSchoolByID(id string) (models.School, error) {
	school, ok := s.schools[id]
	if !ok {
		return models.School{}, sql.ErrNoRows
	}
	return school, nil
}

func inviteTestRouter(repo *memInviteRepo) *mux.Router {
	authority := invitation.NewAuthority(repo)
	schools := &staticSchools{schools: map[string]models.School{
		"school-1": {ID: "school-1", Name: "Polytech"},
	}}
	handler := NewInviteHandler(authority, schools, nil, "", zerolog.Nop())

	router := mux.NewRouter()
	router.HandleFunc("/api/invites/{purpose}", handler.CreateInvite).Methods(http.MethodPost)
	router.HandleFunc("/api/invites/{purpose}/{code}", handler.PreviewInvite).Methods(http.MethodGet)
	return router
}

func createInvite(t *testing.T, router *mux.Router, id authz.Identity, purpose string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/invites/"+purpose, nil)
	req = req.WithContext(authz.WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var codePattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestCreateInviteIssuesOnce(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())
	manager := authz.Identity{UserID: "u1", Role: models.RoleManager, SchoolID: "school-1"}

	rec := createInvite(t, router, manager, "staff")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var first inviteResponse
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !codePattern.MatchString(first.Code) {
		t.Errorf("code = %q, want 16 hex characters", first.Code)
	}
	if first.Purpose != models.PurposeStaff || first.SchoolID != "school-1" {
		t.Errorf("unexpected invite: %+v", first)
	}
	if !strings.Contains(first.URL, first.Code) {
		t.Errorf("url %q does not embed the code", first.URL)
	}

	// Asking again hands back the same code, not a fresh one.
	rec = createInvite(t, router, manager, "staff")
	var second inviteResponse
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if second.Code != first.Code {
		t.Errorf("reissue changed the code: %q then %q", first.Code, second.Code)
	}
}

func TestCreateInviteDistinctPerPurpose(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())
	manager := authz.Identity{UserID: "u1", Role: models.RoleManager, SchoolID: "school-1"}

	codes := map[string]bool{}
	for _, purpose := range []string{"staff", "students", "attendee"} {
		rec := createInvite(t, router, manager, purpose)
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: status = %d", purpose, rec.Code)
		}
		var resp inviteResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		codes[resp.Code] = true
	}
	if len(codes) != 3 {
		t.Errorf("got %d distinct codes, want 3", len(codes))
	}
}

func TestCreateInviteDeniedForStudent(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())
	student := authz.Identity{UserID: "u2", Role: models.RoleStudent, SchoolID: "school-1"}

	rec := createInvite(t, router, student, "staff")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != string(authz.DenyRole) {
		t.Errorf("body = %q, want %q", got, authz.DenyRole)
	}
}

func TestCreateInviteRequiresAuth(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/invites/staff", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCreateInviteUnknownPurpose(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())
	manager := authz.Identity{UserID: "u1", Role: models.RoleManager, SchoolID: "school-1"}

	rec := createInvite(t, router, manager, "teachers")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPreviewInvite(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())
	manager := authz.Identity{UserID: "u1", Role: models.RoleManager, SchoolID: "school-1"}

	rec := createInvite(t, router, manager, "students")
	var created inviteResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/invites/students/"+created.Code, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var preview struct {
		SchoolID   string               `json:"school_id"`
		SchoolName string               `json:"school_name"`
		Purpose    models.InvitePurpose `json:"purpose"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if preview.SchoolID != "school-1" || preview.SchoolName != "Polytech" {
		t.Errorf("unexpected preview: %+v", preview)
	}
	if preview.Purpose != models.PurposeStudents {
		t.Errorf("purpose = %q", preview.Purpose)
	}

	// The same code on the staff page is not redeemable.
	req = httptest.NewRequest(http.MethodGet, "/api/invites/staff/"+created.Code, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("wrong purpose: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPreviewInviteUnknownCode(t *testing.T) {
	router := inviteTestRouter(newMemInviteRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/invites/staff/feedfacefeedface", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPreviewInviteExpiredCode(t *testing.T) {
	repo := newMemInviteRepo()
	expired := models.InvitationCode{
		Code:      "deadbeefcafef00d",
		Purpose:   models.PurposeStaff,
		ExpiresAt: time.Now().AddDate(0, 0, -40).Unix(),
		SchoolID:  "school-1",
	}
	repo.byCode[expired.Code] = expired
	repo.byKey[codeKey{school: "school-1", purpose: models.PurposeStaff}] = expired

	router := inviteTestRouter(repo)
	req := httptest.NewRequest(http.MethodGet, "/api/invites/staff/"+expired.Code, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
