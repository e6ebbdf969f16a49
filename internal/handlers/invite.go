package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/invitation"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/notification"
	"github.com/eventerx/eventerx-api/internal/repository"
)

type InviteHandler struct {
	authority *invitation.Authority
	schools   repository.SchoolRepository
	mailer    notification.InviteMailer
	urlTpl    string
	logger    zerolog.Logger
}

func NewInviteHandler(authority *invitation.Authority, schools repository.SchoolRepository, mailer notification.InviteMailer, inviteURLTemplate string, logger zerolog.Logger) *InviteHandler {
	if inviteURLTemplate == "" {
		inviteURLTemplate = "https://app.eventerx.dev/invite/%s/%s"
	}
	return &InviteHandler{
		authority: authority,
		schools:   schools,
		mailer:    mailer,
		urlTpl:    inviteURLTemplate,
		logger:    logger,
	}
}

type createInviteRequest struct {
	// Email, when set, gets the invite link mailed to it.
	Email string `json:"email"`
}

type inviteResponse struct {
	Code      string               `json:"code"`
	Purpose   models.InvitePurpose `json:"purpose"`
	SchoolID  string               `json:"school_id"`
	URL       string               `json:"url"`
	ExpiresAt time.Time            `json:"expires_at"`
}

func (h *InviteHandler) inviteURL(purpose models.InvitePurpose, code string) string {
	return fmt.Sprintf(h.urlTpl, purpose, code)
}

// CreateInvite issues, or returns the already-issued, invitation code
// for the requester's own school and the purpose in the path. School
// admins and managers only.
func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if decision := authz.Authorize(id, authz.ManagementRoles, ""); !decision.Allowed {
		denied(w, decision)
		return
	}
	if id.SchoolID == "" {
		http.Error(w, "no school scope", http.StatusForbidden)
		return
	}

	purpose := models.InvitePurpose(strings.ToLower(mux.Vars(r)["purpose"]))
	if !purpose.IsValid() {
		http.Error(w, "unknown invite purpose", http.StatusNotFound)
		return
	}

	var payload createInviteRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&payload) // optional body
	}

	code, err := h.authority.IssueOrReuse(id.SchoolID, purpose)
	if err != nil {
		h.logger.Error().Err(err).Str("school_id", id.SchoolID).Msg("failed to issue invitation code")
		http.Error(w, "failed to issue invitation code", http.StatusInternalServerError)
		return
	}

	inviteURL := h.inviteURL(code.Purpose, code.Code)

	if recipient := strings.TrimSpace(payload.Email); recipient != "" {
		if h.mailer == nil {
			http.Error(w, "email sender not configured", http.StatusInternalServerError)
			return
		}
		school, err := h.schools.GetSchoolByID(id.SchoolID)
		if err != nil {
			http.Error(w, "failed to load school", http.StatusInternalServerError)
			return
		}
		if err := h.mailer.SendInvite(recipient, school.Name, inviteURL); err != nil {
			h.logger.Error().Err(err).Str("recipient", recipient).Msg("failed to send invite email")
			http.Error(w, "failed to send invite email", http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, http.StatusCreated, inviteResponse{
		Code:      code.Code,
		Purpose:   code.Purpose,
		SchoolID:  code.SchoolID,
		URL:       inviteURL,
		ExpiresAt: time.Unix(code.ExpiresAt, 0).UTC(),
	})
}

// PreviewInvite validates a code from an invite link and tells the
// registration page which school and track it is for. Public; unknown
// and expired codes both 404.
func (h *InviteHandler) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	purpose := models.InvitePurpose(strings.ToLower(vars["purpose"]))
	token := strings.TrimSpace(vars["code"])
	if token == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	code, err := h.authority.Validate(token)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCode) {
			http.Error(w, "invalid invitation code", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to validate code", http.StatusInternalServerError)
		return
	}
	if code.Purpose != purpose {
		http.Error(w, "invalid invitation code", http.StatusNotFound)
		return
	}

	school, err := h.schools.GetSchoolByID(code.SchoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "school not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load school", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		SchoolID   string               `json:"school_id"`
		SchoolName string               `json:"school_name"`
		Purpose    models.InvitePurpose `json:"purpose"`
		ExpiresAt  time.Time            `json:"expires_at"`
	}{
		SchoolID:   code.SchoolID,
		SchoolName: school.Name,
		Purpose:    code.Purpose,
		ExpiresAt:  time.Unix(code.ExpiresAt, 0).UTC(),
	})
}
