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

type EventHandler struct {
	events repository.EventRepository
	logger zerolog.Logger
}

func NewEventHandler(events repository.EventRepository, logger zerolog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

type eventRequest struct {
	Title       string    `json:"title"`
	Venue       string    `json:"venue"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	DueDate     time.Time `json:"due_date"`
	Budget      int64     `json:"budget"`
	Private     bool      `json:"private"`
}

func (req eventRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Venue) == "" {
		return errors.New("title and venue are required")
	}
	if req.StartDate.IsZero() || req.DueDate.IsZero() || req.DueDate.Before(req.StartDate) {
		return errors.New("invalid event dates")
	}
	return nil
}

var managerOnly = []models.Role{models.RoleManager}

// ListEvents returns the requester's school events. Managers only.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if decision := authz.Authorize(id, managerOnly, ""); !decision.Allowed {
		denied(w, decision)
		return
	}

	events, err := h.events.ListEventsBySchool(id.SchoolID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list events")
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// CreateEvent creates an event under the manager's school.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
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

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.events.CreateEvent(models.EventProject{
		Title:       strings.TrimSpace(req.Title),
		Venue:       strings.TrimSpace(req.Venue),
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Budget:      req.Budget,
		IsActive:    true,
		Private:     req.Private,
		SchoolID:    id.SchoolID,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create event")
		http.Error(w, "failed to create event", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) loadScoped(w http.ResponseWriter, r *http.Request, required []models.Role) (models.EventProject, bool) {
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

// GetEvent returns one event. School admins and managers, own school.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadScoped(w, r, authz.ManagementRoles)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// UpdateEvent rewrites an event's fields in place. Managers only.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadScoped(w, r, managerOnly)
	if !ok {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Venue = strings.TrimSpace(req.Venue)
	event.Description = req.Description
	event.StartDate = req.StartDate
	event.DueDate = req.DueDate
	event.Budget = req.Budget
	event.Private = req.Private

	updated, err := h.events.UpdateEvent(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to update event")
		http.Error(w, "failed to update event", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteEvent removes an event and its commissions.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadScoped(w, r, authz.ManagementRoles)
	if !ok {
		return
	}

	if err := h.events.DeleteEvent(event.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to delete event")
		http.Error(w, "failed to delete event", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
