package authz

import (
	"net/http"

	"github.com/eventerx/eventerx-api/internal/models"
)

// RequireRole returns a middleware that rejects requests whose
// authenticated identity fails the role check. Per-resource scope
// checks stay in the handlers, which know the resource's school.
func RequireRole(required ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromRequest(r)
			if !ok {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if decision := Authorize(id, required, ""); !decision.Allowed {
				http.Error(w, string(decision.Reason), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
