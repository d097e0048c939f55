package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-phone-auth/internal/domain"
)

const actorKey contextKey = "actor"

type userLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// LoadActor resolves the caller named by the token against the user store.
// Roles are read from the store so demotions and promotions apply to tokens
// already issued. Unknown or disabled users are rejected. Must run after Auth.
func LoadActor(users userLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				slog.Error("load actor", "user_id", claims.UserID, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !u.Enable {
				writeJSONError(w, http.StatusUnauthorized, "account disabled")
				return
			}
			actor := domain.Actor{UserID: u.UserID, Role: u.Role}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the caller loaded by LoadActor.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey).(domain.Actor)
	return a, ok
}
