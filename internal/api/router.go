package api

import (
	"bankscap/internal/etl/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(runHandler *handler.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Handle("/metrics", promhttp.Handler())

	router.Post("/api/v1/runs", runHandler.TriggerRun)
	router.Get("/api/v1/runs/last", runHandler.GetLastRun)
	return router
}
