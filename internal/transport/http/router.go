package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopshap/internal/application/verification"
	"github.com/shopshap/internal/config"
	"github.com/shopshap/internal/transport/http/handler"
	appmiddleware "github.com/shopshap/internal/transport/http/middleware"
)

// Deps holds the application services and shared middleware for the router.
type Deps struct {
	Verification verification.Service
	IPLimiter    *appmiddleware.RateLimiter // optional
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	verifyH := handler.NewVerificationHandler(deps.Verification)

	r.Get("/health", handler.Health)

	r.Route("/verification", func(r chi.Router) {
		r.Options("/send", verifyH.Options)
		r.Options("/verify", verifyH.Options)

		r.Group(func(r chi.Router) {
			if deps.IPLimiter != nil {
				r.Use(deps.IPLimiter.Limit)
			}
			r.Post("/send", verifyH.Send)
			r.Post("/verify", verifyH.Verify)
		})

		// Exposes live codes; never routed outside development.
		if cfg.IsDevelopment() {
			r.Get("/debug", verifyH.Debug)
		}
	})

	return r
}
