package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
)

type TeamHandler struct {
	teams       repository.TeamRepository
	staff       repository.StaffRepository
	commissions repository.CommissionRepository
	logger      zerolog.Logger
}

func NewTeamHandler(teams repository.TeamRepository, staff repository.StaffRepository, commissions repository.CommissionRepository, logger zerolog.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, staff: staff, commissions: commissions, logger: logger}
}

// ListTeams returns the manager's school teams, with the unassigned
// staff and commissions available for a new team.
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if decision := authz.Authorize(id, managerOnly, ""); !decision.Allowed {
		denied(w, decision)
		return
	}

	teams, err := h.teams.ListTeamsBySchool(id.SchoolID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list teams")
		http.Error(w, "failed to list teams", http.StatusInternalServerError)
		return
	}

	available, err := h.staff.ListUnassignedStaff(id.SchoolID)
	if err != nil {
		http.Error(w, "failed to list available staff", http.StatusInternalServerError)
		return
	}
	unassigned, err := h.commissions.ListUnassignedCommissions(id.SchoolID)
	if err != nil {
		http.Error(w, "failed to list available commissions", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Teams                 []models.Team             `json:"teams"`
		AvailableStaff        []repository.StaffListing `json:"available_staff"`
		UnassignedCommissions []models.Commission       `json:"unassigned_commissions"`
	}{Teams: teams, AvailableStaff: available, UnassignedCommissions: unassigned})
}

type createTeamRequest struct {
	Title       string   `json:"title"`
	Members     []string `json:"members"`
	Commissions []string `json:"commissions"`
}

// CreateTeam creates a team and assigns the chosen members and
// commissions in one transaction. Any invalid selection aborts the
// whole creation.
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if decision := authz.Authorize(id, managerOnly, ""); !decision.Allowed {
		denied(w, decision)
		return
	}
	if id.SchoolID == "" {
		http.Error(w, "no school scope", http.StatusForbidden)
		return
	}

	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	team, err := h.teams.CreateTeamWithAssignments(
		models.Team{Title: strings.TrimSpace(req.Title), SchoolID: id.SchoolID},
		req.Members,
		req.Commissions,
	)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidAssignment) {
			http.Error(w, "invalid member or commission selection", http.StatusConflict)
			return
		}
		h.logger.Error().Err(err).Msg("failed to create team")
		http.Error(w, "failed to create team", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, team)
}

// DeleteTeam removes a team; its members and commissions become
// unassigned again.
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	teamID := mux.Vars(r)["teamID"]
	team, err := h.teams.GetTeamByID(teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "team not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load team", http.StatusInternalServerError)
		return
	}

	if decision := authz.Authorize(id, authz.ManagementRoles, team.SchoolID); !decision.Allowed {
		denied(w, decision)
		return
	}

	if err := h.teams.DeleteTeam(team.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "team not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("team_id", team.ID).Msg("failed to delete team")
		http.Error(w, "failed to delete team", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
