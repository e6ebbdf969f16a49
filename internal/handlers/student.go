package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/invitation"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
)

type StudentHandler struct {
	students  repository.StudentRepository
	users     repository.UserRepository
	authority *invitation.Authority
	urlTpl    string
	logger    zerolog.Logger
}

func NewStudentHandler(students repository.StudentRepository, users repository.UserRepository, authority *invitation.Authority, inviteURLTemplate string, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students:  students,
		users:     users,
		authority: authority,
		urlTpl:    inviteURLTemplate,
		logger:    logger,
	}
}

// ListStudents returns the requester's school students, plus the
// active students invite link when one exists. The route middleware
// has already checked the role.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	listings, err := h.students.ListStudentsBySchool(id.SchoolID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list students")
		http.Error(w, "failed to list students", http.StatusInternalServerError)
		return
	}

	var inviteURL string
	if code, err := h.authority.ActiveCode(id.SchoolID, models.PurposeStudents); err == nil {
		inviteURL = fmt.Sprintf(h.urlTpl, code.Purpose, code.Code)
	}

	respondJSON(w, http.StatusOK, struct {
		Students  []repository.StudentListing `json:"students"`
		InviteURL string                      `json:"invite_url,omitempty"`
	}{Students: listings, InviteURL: inviteURL})
}

// DeleteStudent removes the account; the profile cascades with it.
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	matricule := mux.Vars(r)["matricule"]
	student, err := h.students.GetStudentByMatricule(matricule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load student", http.StatusInternalServerError)
		return
	}

	if decision := authz.Authorize(id, authz.ManagementRoles, student.SchoolID); !decision.Allowed {
		denied(w, decision)
		return
	}

	if err := h.users.DeleteUser(student.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("matricule", matricule).Msg("failed to delete student")
		http.Error(w, "failed to delete student", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
