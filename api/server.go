/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Structured request logging (zap)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the calculator frontend

ROUTE GROUPS:
  /api/severance        Dismissal liquidation
  /api/injury           Injury claim
  /api/base-income      Base monthly income
  /api/calculations/*   Calculation log
  /api/policies         Rates in force
  /api/series/latest    Latest published values
  /api/floors           Floor schedule
  /api/admin/*          Dataset upload, import and reload (rate limited)
  /healthz              Liveness
  /metrics              Prometheus scrape

SECURITY NOTE:
  No authentication middleware. Upload and admin routes are expected to be
  restricted at the ingress.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured. An empty
// origins list allows any origin.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/severance", h.CalculateSeverance)

		r.Post("/injury", h.CalculateInjury)
		r.Post("/base-income", h.CalculateBaseIncome)

		r.Route("/calculations", func(r chi.Router) {
			r.Get("/", h.ListCalculations)
			r.Get("/{id}", h.GetCalculation)
		})

		r.Get("/policies", h.GetPolicies)
		r.Get("/series/latest", h.LatestSeries)
		r.Get("/floors", h.ListFloors)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RateLimit(h.AdminLimiter))
			r.Post("/datasets/{name}", h.UploadDataset)
			r.Post("/import", h.ImportAll)
			r.Post("/reload", h.Reload)
		})
	})

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
