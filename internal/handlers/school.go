package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/registration"
	"github.com/eventerx/eventerx-api/internal/repository"
)

type SchoolHandler struct {
	reg     *registration.Service
	schools repository.SchoolRepository
	logger  zerolog.Logger
}

func NewSchoolHandler(reg *registration.Service, schools repository.SchoolRepository, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{reg: reg, schools: schools, logger: logger}
}

type registerSchoolRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Phone    string `json:"phone"`
	POBox    string `json:"pobox"`
	Website  string `json:"website"`
}

// RegisterSchool creates a school and its admin account. Public.
func (h *SchoolHandler) RegisterSchool(w http.ResponseWriter, r *http.Request) {
	var req registerSchoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, school, err := h.reg.RegisterSchool(registration.SchoolForm{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Address1: req.Address1,
		Address2: req.Address2,
		Phone:    req.Phone,
		POBox:    req.POBox,
		Website:  req.Website,
	})
	if err != nil {
		if reason, ok := registration.RejectionReason(err); ok {
			http.Error(w, string(reason), rejectionStatus(reason))
			return
		}
		h.logger.Error().Err(err).Msg("school registration failed")
		http.Error(w, "Failed to register school", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		UserID string        `json:"user_id"`
		School models.School `json:"school"`
	}{UserID: user.ID, School: school})
}

// ListSchools returns every registered school. Root only.
func (h *SchoolHandler) ListSchools(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if decision := authz.Authorize(id, []models.Role{models.RoleRoot}, ""); !decision.Allowed {
		denied(w, decision)
		return
	}

	schools, err := h.schools.ListSchools()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list schools")
		http.Error(w, "failed to list schools", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, schools)
}

// GetSchool returns the school record. Management roles, own school
// only.
func (h *SchoolHandler) GetSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	schoolID := mux.Vars(r)["schoolID"]
	school, err := h.schools.GetSchoolByID(schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "school not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load school", http.StatusInternalServerError)
		return
	}

	if decision := authz.Authorize(id, authz.ManagementRoles, school.ID); !decision.Allowed {
		denied(w, decision)
		return
	}

	respondJSON(w, http.StatusOK, school)
}

// DeleteSchool removes a school and, by cascade, everything it owns.
// Root only.
func (h *SchoolHandler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if decision := authz.Authorize(id, []models.Role{models.RoleRoot}, ""); !decision.Allowed {
		denied(w, decision)
		return
	}

	schoolID := mux.Vars(r)["schoolID"]
	if err := h.schools.DeleteSchool(schoolID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "school not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("school_id", schoolID).Msg("failed to delete school")
		http.Error(w, "failed to delete school", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
