package middleware

import (
	"net/http"

	"github.com/go-phone-auth/internal/domain"
)

// RequireRole returns middleware that allows access only to callers whose
// stored role matches one of the provided role names (e.g. domain.RoleAdmin).
// Must run after LoadActor.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, role := range allowedRoles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}

// RequireAdmin gates a route on the is-admin capability.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin)(next)
}
