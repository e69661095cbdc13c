package handlers

import (
	"context"
	"errors"
	"net/http"

	"weekly-route-service/internal/api/dto"
	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/ports"
	"weekly-route-service/internal/services"
)

// BatchRunner triggers one route-generation run.
type BatchRunner interface {
	Run(ctx context.Context) (*domain.Snapshot, error)
}

type RouteHandler struct {
	Snapshots ports.SnapshotRepository
	Runner    BatchRunner
}

// Latest serves the result of the most recent batch run.
func (h *RouteHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := h.Snapshots.Latest(r.Context())
	if err != nil {
		if errors.Is(err, ports.ErrNoSnapshot) {
			writeError(w, r, http.StatusNotFound, "no routes generated yet")
			return
		}
		log.Errorf("latest snapshot failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromSnapshot(snap))
}

// Generate runs the batch on demand and returns the freshly generated
// snapshot. Concurrent requests beyond the first are rejected with 409.
func (h *RouteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := h.Runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			writeError(w, r, http.StatusConflict, "a route generation run is already in progress")
			return
		}
		log.Errorf("route generation failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromSnapshot(snap))
}
