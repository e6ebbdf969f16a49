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

type StaffHandler struct {
	staff     repository.StaffRepository
	users     repository.UserRepository
	authority *invitation.Authority
	urlTpl    string
	logger    zerolog.Logger
}

func NewStaffHandler(staff repository.StaffRepository, users repository.UserRepository, authority *invitation.Authority, inviteURLTemplate string, logger zerolog.Logger) *StaffHandler {
	return &StaffHandler{
		staff:     staff,
		users:     users,
		authority: authority,
		urlTpl:    inviteURLTemplate,
		logger:    logger,
	}
}

// ListStaff returns the requester's school roster, plus the active
// staff invite link when one exists. The route middleware has already
// checked the role.
func (h *StaffHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	listings, err := h.staff.ListStaffBySchool(id.SchoolID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list staff")
		http.Error(w, "failed to list staff", http.StatusInternalServerError)
		return
	}

	var inviteURL string
	if code, err := h.authority.ActiveCode(id.SchoolID, models.PurposeStaff); err == nil {
		inviteURL = fmt.Sprintf(h.urlTpl, code.Purpose, code.Code)
	}

	respondJSON(w, http.StatusOK, struct {
		Staff     []repository.StaffListing `json:"staff"`
		InviteURL string                    `json:"invite_url,omitempty"`
	}{Staff: listings, InviteURL: inviteURL})
}

func (h *StaffHandler) loadScoped(w http.ResponseWriter, r *http.Request, required []models.Role) (models.StaffMember, bool) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return models.StaffMember{}, false
	}

	matricule := mux.Vars(r)["matricule"]
	staff, err := h.staff.GetStaffByMatricule(matricule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "staff member not found", http.StatusNotFound)
			return models.StaffMember{}, false
		}
		http.Error(w, "failed to load staff member", http.StatusInternalServerError)
		return models.StaffMember{}, false
	}

	if decision := authz.Authorize(id, required, staff.SchoolID); !decision.Allowed {
		denied(w, decision)
		return models.StaffMember{}, false
	}
	return staff, true
}

// GetStaffMember returns one staff profile with its account.
func (h *StaffHandler) GetStaffMember(w http.ResponseWriter, r *http.Request) {
	staff, ok := h.loadScoped(w, r, authz.ManagementRoles)
	if !ok {
		return
	}

	user, err := h.users.GetUserByID(staff.UserID)
	if err != nil {
		http.Error(w, "failed to load account", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, repository.StaffListing{Staff: staff, User: user})
}

// DeleteStaffMember removes the account; the profile cascades with it.
func (h *StaffHandler) DeleteStaffMember(w http.ResponseWriter, r *http.Request) {
	staff, ok := h.loadScoped(w, r, authz.ManagementRoles)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(staff.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("matricule", staff.Matricule).Msg("failed to delete staff member")
		http.Error(w, "failed to delete staff member", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PromoteStaffMember grants the manager role. School admins only;
// promoting a manager again is a no-op.
func (h *StaffHandler) PromoteStaffMember(w http.ResponseWriter, r *http.Request) {
	staff, ok := h.loadScoped(w, r, []models.Role{models.RoleSchoolAdmin})
	if !ok {
		return
	}

	user, err := h.users.GetUserByID(staff.UserID)
	if err != nil {
		http.Error(w, "failed to load account", http.StatusInternalServerError)
		return
	}

	if user.Role != models.RoleManager {
		user, err = h.users.SetUserRole(user.ID, models.RoleManager)
		if err != nil {
			h.logger.Error().Err(err).Str("matricule", staff.Matricule).Msg("failed to promote staff member")
			http.Error(w, "failed to promote staff member", http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, http.StatusOK, repository.StaffListing{Staff: staff, User: user})
}
