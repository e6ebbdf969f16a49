package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eventerx/eventerx-api/internal/registration"
)

type RegistrationHandler struct {
	service *registration.Service
	logger  zerolog.Logger
}

func NewRegistrationHandler(service *registration.Service, logger zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: service, logger: logger}
}

type registerRequest struct {
	SchoolID   string `json:"school_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
	Matricule  string `json:"matricule"`
	Phone      string `json:"phone"`
	Speciality string `json:"speciality"`
	Class      string `json:"class"`
}

func (h *RegistrationHandler) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, registration.KindStaff)
}

func (h *RegistrationHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, registration.KindStudent)
}

func (h *RegistrationHandler) RegisterAttendee(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, registration.KindAttendee)
}

func (h *RegistrationHandler) register(w http.ResponseWriter, r *http.Request, kind registration.Kind) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.SchoolID == "" {
		http.Error(w, "school_id is required", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(kind, req.SchoolID, registration.Form{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
		Matricule:  req.Matricule,
		Phone:      req.Phone,
		Speciality: req.Speciality,
		Class:      req.Class,
	})
	if err != nil {
		if reason, ok := registration.RejectionReason(err); ok {
			http.Error(w, string(reason), rejectionStatus(reason))
			return
		}
		h.logger.Error().Err(err).Str("kind", string(kind)).Msg("registration failed")
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}{UserID: user.ID, Email: user.Email})
}
