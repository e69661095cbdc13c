package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"weekly-route-service/internal/api/handlers"
	"weekly-route-service/internal/logger"
	"weekly-route-service/internal/ports"
)

// Deps carries everything the HTTP surface needs. Handlers stay unaware
// of concrete adapters.
type Deps struct {
	Snapshots  ports.SnapshotRepository
	Schedules  ports.ScheduleRepository
	Runner     handlers.BatchRunner
	Trigger    handlers.Rearmer
	DefaultExp string
	Gatherer   prometheus.Gatherer
	Log        logger.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Snapshots: d.Snapshots,
		Runner:    d.Runner,
	}
	scheduleHandler := &handlers.ScheduleHandler{
		Schedules:  d.Schedules,
		Trigger:    d.Trigger,
		DefaultExp: d.DefaultExp,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes/latest", routeHandler.Latest)
	mux.HandleFunc("/routes/generate", routeHandler.Generate)
	mux.HandleFunc("/schedule", scheduleHandler.Handle)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return loggingMiddleware(d.Log, mux)
}
