package handlers

import (
	"net/http"
)

const serviceName = "weekly-route-service"

// Health is the liveness endpoint. It reports the service name so probes
// hitting the wrong port get an identifiable payload.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{
		"status":  "ok",
		"service": serviceName,
	}
	writeJSON(w, r, http.StatusOK, res)
}
