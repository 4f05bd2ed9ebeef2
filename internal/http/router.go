package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/devextech/devex-api/internal/auth"
	"github.com/devextech/devex-api/internal/config"
	"github.com/devextech/devex-api/internal/contact"
	"github.com/devextech/devex-api/internal/httputil"
	"github.com/devextech/devex-api/internal/logging"
	"github.com/devextech/devex-api/internal/payment"
	"github.com/devextech/devex-api/internal/ratelimit"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers bundles everything the router mounts. Limiter may be nil to
// disable rate limiting.
type Handlers struct {
	Auth           *auth.Handler
	AuthMiddleware *auth.Middleware
	Payments       *payment.Handler
	Contact        *contact.Handler
	Limiter        ratelimit.Checker
	Store          Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.ClientTypeHeader},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders(!cfg.Server.IsDevelopment()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth(h.Store))

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	limit := func(purpose string, style httputil.ErrorStyle) func(http.Handler) http.Handler {
		return ratelimit.PerIP(h.Limiter, purpose, style)
	}

	// Credential actions
	r.With(limit(ratelimit.PurposeSignUp, httputil.Flat)).Post("/sign-up", h.Auth.SignUp)
	r.With(limit(ratelimit.PurposeSignIn, httputil.Flat)).Post("/sign-in", h.Auth.SignIn)

	// Called server-to-server by the OAuth front end
	oauth := r.With()
	if cfg.OAuth.InternalAPIKey != "" {
		oauth = r.With(auth.RequireAPIKey(cfg.OAuth.InternalAPIKey))
	}
	oauth.Post("/sign-in-with-oauth", h.Auth.SignInWithOAuth)

	// Payments
	r.With(limit(ratelimit.PurposeOrder, httputil.Flat)).Post("/create-order", h.Payments.CreateOrder)
	r.Post("/verify-payment", h.Payments.VerifyPayment)

	r.With(limit(ratelimit.PurposeContact, httputil.Nested)).Post("/contact", h.Contact.Submit)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware.RequireAuth)
		r.Post("/sign-out", h.Auth.SignOut)
		r.Get("/me", h.Auth.Me)
		r.Get("/users/{id}", h.Auth.GetUser)
		r.Get("/accounts/by-provider/{providerAccountId}", h.Auth.GetAccountByProvider)
		r.Get("/my-purchase", h.Payments.MyPurchase)
	})

	return r
}

// handleHealth reports whether the store is reachable
// @Summary      Health check
// @Description  Check that the API is running and the database answers
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func handleHealth(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				logging.GetLoggerFromContext(r.Context()).Error("health check failed", "error", err.Error())
				httputil.RespondJSON(w, map[string]string{"status": "database unavailable"}, http.StatusServiceUnavailable)
				return
			}
		}
		httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
	}
}
