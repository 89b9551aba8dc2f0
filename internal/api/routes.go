package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/junkeythong/amlichvietnam/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Everything under /api/v1 is public read-only conversion and festival
// lookup. Catalog mutations sit behind the API key.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/solar/{year}/{month}/{day}", handlers.ConvertSolar)
		r.Get("/lunar/today", handlers.GetToday)
		r.Get("/lunar/{year}/{month}/{day}", handlers.ConvertLunar)
		r.Get("/years/{year}", handlers.GetYear)

		r.Get("/festivals", handlers.ListFestivals)
		r.Get("/festivals/date/{date}", handlers.GetDateFestivals)
		r.Get("/festivals/{year}", handlers.GetYearFestivals)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))
			r.Post("/festivals", handlers.CreateFestival)
			r.Delete("/festivals/{id}", handlers.DeleteFestival)
		})
	})

	return r
}
