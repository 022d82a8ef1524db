package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker-client/internal/contract"
	"github.com/frahmantamala/expense-tracker-client/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker-client/internal/transport/swagger"
	"github.com/go-chi/chi"
)

type RouteDeps struct {
	Health  *HealthHandler
	Preview *PreviewHandler
	Session middleware.SessionState
	Logger  *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouteDeps) {
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))

	// API contract the client is written against, browsable through swagger
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(contract.Document())
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", deps.Health.healthCheckHandler)
	router.Get("/ping", deps.Health.pingHandler)

	router.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireSession(deps.Session))

		pr.Route("/api", func(ar chi.Router) {
			ar.Get("/snapshot", deps.Preview.GetSnapshot)
			ar.Get("/month", deps.Preview.GetMonth)
			ar.Post("/month/next", deps.Preview.NextMonth)
			ar.Post("/month/previous", deps.Preview.PreviousMonth)
		})

		pr.Route("/charts", func(cr chi.Router) {
			cr.Get("/bar.svg", deps.Preview.BarChart)
			cr.Get("/pie.svg", deps.Preview.PieChart)
		})
	})
}
