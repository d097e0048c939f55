package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-phone-auth/internal/domain"
	jwtinfra "github.com/go-phone-auth/internal/infrastructure/jwt"
	"github.com/go-phone-auth/internal/transport/http/middleware"
	"github.com/stretchr/testify/require"
)

// newTestJWTProvider returns a provider backed by a fresh in-memory RSA key pair.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewEphemeralProvider(24 * time.Hour)
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, role, "5550100")
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// tokenUsers is a user store that agrees with whatever role the token carries.
type tokenUsers struct{}

func (tokenUsers) Get(ctx context.Context, userID string) (*domain.User, error) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &domain.User{UserID: userID, Role: claims.Role, Enable: true}, nil
}

// serveAuthed wraps the handler with middleware.Auth and middleware.LoadActor before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(middleware.LoadActor(tokenUsers{})(h)).ServeHTTP(w, r)
}

func jsonBody(s string) *bytes.Reader { return bytes.NewReader([]byte(s)) }
