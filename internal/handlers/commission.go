package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/models"
	"github.com/eventerx/eventerx-api/internal/repository"
)

type CommissionHandler struct {
	commissions repository.CommissionRepository
	events      repository.EventRepository
	logger      zerolog.Logger
}

func NewCommissionHandler(commissions repository.CommissionRepository, events repository.EventRepository, logger zerolog.Logger) *CommissionHandler {
	return &CommissionHandler{commissions: commissions, events: events, logger: logger}
}

type commissionRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	DueDate     time.Time `json:"due_date"`
	Priority    int       `json:"priority"`
	State       string    `json:"state"`
}

func (h *CommissionHandler) loadEventScoped(w http.ResponseWriter, r *http.Request, required []models.Role) (models.EventProject, bool) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return models.EventProject{}, false
	}

	eventID := mux.Vars(r)["eventID"]
	event, err := h.events.GetEventByID(eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "event not found", http.StatusNotFound)
			return models.EventProject{}, false
		}
		http.Error(w, "failed to load event", http.StatusInternalServerError)
		return models.EventProject{}, false
	}

	if decision := authz.Authorize(id, required, event.SchoolID); !decision.Allowed {
		denied(w, decision)
		return models.EventProject{}, false
	}
	return event, true
}

// CreateCommission adds a sub-task to an event. Managers only; the
// commission starts unassigned.
func (h *CommissionHandler) CreateCommission(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventScoped(w, r, managerOnly)
	if !ok {
		return
	}

	var req commissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.StartDate.IsZero() || req.DueDate.IsZero() || req.DueDate.Before(req.StartDate) {
		http.Error(w, "invalid commission dates", http.StatusBadRequest)
		return
	}
	if req.Priority < models.PriorityLow || req.Priority > models.PriorityHigh {
		http.Error(w, "priority must be between 1 and 3", http.StatusBadRequest)
		return
	}

	state := models.CommissionState(req.State)
	if req.State == "" {
		state = models.CommissionPending
	}
	if !state.IsValid() {
		http.Error(w, "unknown commission state", http.StatusBadRequest)
		return
	}

	commission, err := h.commissions.CreateCommission(models.Commission{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		State:       state,
		EventID:     event.ID,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to create commission")
		http.Error(w, "failed to create commission", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, commission)
}

// ListCommissions returns an event's commissions.
func (h *CommissionHandler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEventScoped(w, r, authz.ManagementRoles)
	if !ok {
		return
	}

	commissions, err := h.commissions.ListCommissionsByEvent(event.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to list commissions")
		http.Error(w, "failed to list commissions", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, commissions)
}
