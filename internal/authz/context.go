package authz

import (
	"context"
	"net/http"

	"github.com/eventerx/eventerx-api/internal/models"
)

// Identity is the authenticated actor as the guard sees it: who they
// are, their single role, and the school their role resolves to.
// SchoolID is empty for root, which is scoped to nothing and allowed
// everywhere.
type Identity struct {
	UserID   string
	Email    string
	Role     models.Role
	SchoolID string
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the authenticated identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromRequest returns the identity the auth middleware stored.
func IdentityFromRequest(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	if !ok || !id.Role.IsValid() {
		return Identity{}, false
	}
	return id, true
}
