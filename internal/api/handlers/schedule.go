package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"weekly-route-service/internal/api/dto"
	"weekly-route-service/internal/ports"
	"weekly-route-service/internal/scheduler"
)

// Rearmer swaps the live recurring trigger to a new cron expression.
type Rearmer interface {
	Arm(expr string) error
}

type ScheduleHandler struct {
	Schedules  ports.ScheduleRepository
	Trigger    Rearmer
	DefaultExp string
}

func (h *ScheduleHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// get reports the active expression. Before any explicit configuration the
// built-in default is reported with a zero LastUpdated.
func (h *ScheduleHandler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Schedules.Latest(r.Context())
	if err != nil {
		if errors.Is(err, ports.ErrNoSchedule) {
			writeJSON(w, r, http.StatusOK, dto.ScheduleResponse{
				Expression:  h.DefaultExp,
				LastUpdated: time.Time{},
			})
			return
		}
		log.Errorf("load schedule failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ScheduleResponse{
		Expression:  cfg.Expression,
		LastUpdated: cfg.LastUpdated,
	})
}

func (h *ScheduleHandler) put(w http.ResponseWriter, r *http.Request) {
	var req dto.ScheduleUpdateRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	expr := strings.TrimSpace(req.Expression)
	if expr == "" {
		writeError(w, r, http.StatusBadRequest, "expression is required")
		return
	}
	if err := scheduler.Validate(expr); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid cron expression")
		return
	}

	cfg, err := h.Schedules.Save(r.Context(), expr)
	if err != nil {
		log.Errorf("save schedule failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Trigger.Arm(expr); err != nil {
		log.Errorf("re-arm trigger failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ScheduleResponse{
		Expression:  cfg.Expression,
		LastUpdated: cfg.LastUpdated,
	})
}
