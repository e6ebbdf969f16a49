package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventerx/eventerx-api/internal/authz"
	"github.com/eventerx/eventerx-api/internal/registration"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func denied(w http.ResponseWriter, decision authz.Decision) {
	http.Error(w, string(decision.Reason), http.StatusForbidden)
}

// rejectionStatus maps registration rejections onto HTTP statuses: a
// missing invitation looks like a missing page, duplicates are
// conflicts, bad fields are bad requests.
func rejectionStatus(reason registration.Reason) int {
	switch reason {
	case registration.ReasonNoInvitation:
		return http.StatusNotFound
	case registration.ReasonInvalidFields:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}
