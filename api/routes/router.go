package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nadiaferrer/studiohub-backend/api/controllers"
	"github.com/nadiaferrer/studiohub-backend/api/middleware"
	"github.com/nadiaferrer/studiohub-backend/pkg/auth/session"
	"github.com/nadiaferrer/studiohub-backend/pkg/config"
	"github.com/nadiaferrer/studiohub-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    session.AccessSessionChecker
	Health      *controllers.HealthController
	Checkout    *controllers.CheckoutController
	Enrollments *controllers.EnrollmentsController
	Registry    *prometheus.Registry
}

// New assembles the chi router: public probes, the metrics endpoint, and the
// authenticated v1 API.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", deps.Health.Live)
		r.Get("/ready", deps.Health.Ready)
	})

	r.Get("/api/public/ping", controllers.Ping)

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Sessions, deps.Logger))

		r.Post("/checkout/complete", deps.Checkout.Complete)
		r.Get("/enrollments", deps.Enrollments.List)
	})

	return r
}
