package handler

import (
	"net/http"
)

// GetLastRun reports the outcome of the most recent scheduled run.
func (h *Handler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	status, ok := h.runs.LastRun()
	if !ok {
		writeError(w, http.StatusNotFound, "no run has finished yet")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
