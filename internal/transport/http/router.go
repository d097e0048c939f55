package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-phone-auth/internal/application/auth"
	"github.com/go-phone-auth/internal/application/user"
	"github.com/go-phone-auth/internal/config"
	jwtinfra "github.com/go-phone-auth/internal/infrastructure/jwt"
	"github.com/go-phone-auth/internal/transport/http/handler"
	appmiddleware "github.com/go-phone-auth/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	Codes       auth.CodeStore
	Notifier    auth.Notifier
	JWTProvider *jwtinfra.Provider
	// Now overrides the clock used for code expiry. Nil means time.Now.
	Now func() time.Time
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		Codes:       deps.Codes,
		UserRepo:    deps.UserRepo,
		Tokens:      deps.JWTProvider,
		Notifier:    deps.Notifier,
		CodeTTL:     cfg.VerificationTTL,
		AdminPhones: cfg.AdminPhoneNumbers,
		Now:         deps.Now,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})

	healthH := handler.NewHealthHandler()
	privacyH := handler.NewPrivacyHandler(cfg.PrivacyPolicyPath)
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.Get("/privacy-policy", privacyH.Show)
	r.Post("/register", authH.Register)
	r.Post("/login", authH.Login)
	r.Post("/verify", authH.Verify)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider))
		r.Use(appmiddleware.LoadActor(deps.UserRepo))

		r.Get("/users/{id}", userH.Get)
		r.Put("/users/{id}", userH.Update)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireAdmin)

			r.Get("/users", userH.List)
		})
	})

	return r
}
