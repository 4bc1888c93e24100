package http

import (
	"net/http"

	"github.com/brainbox-api/internal/application/reset"
	"github.com/brainbox-api/internal/config"
	"github.com/brainbox-api/internal/transport/http/handler"
	appmiddleware "github.com/brainbox-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — the reset endpoints are public and
	// guess-sensitive.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	resetSvc := reset.NewService(reset.ServiceDeps{
		Challenges:  deps.Challenges,
		ResetTokens: deps.ResetTokens,
		Users:       deps.Users,
		Deliveries:  deps.Deliveries,
		Mailer:      deps.Mailer,
		Alerts:      deps.Alerts,
		Verified:    cfg.VerifiedRecipients,
		CodeTTL:     cfg.CodeTTL,
		TokenTTL:    cfg.ResetTokenTTL,
		MaxAttempts: cfg.MaxAttempts,
	})

	healthH := handler.NewHealthHandler()
	resetH := handler.NewPasswordResetHandler(resetSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/password-reset/{action}", resetH.Action)
	})

	return r
}
