package handler

import (
	"errors"
	"net/http"

	"bankscap/internal/etl"

	"github.com/sirupsen/logrus"
)

type TriggerRunResponse struct {
	Status string `json:"status"`
}

// TriggerRun queues an extra pipeline run outside the regular interval.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if err := h.runs.Trigger(); err != nil {
		if errors.Is(err, etl.ErrSchedulerStopped) {
			writeError(w, http.StatusServiceUnavailable, "scheduler is not running")
			return
		}
		msg := "ups, couldn't trigger a run this time"
		logrus.WithError(err).WithField("handler", "TriggerRun").Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	writeJSON(w, http.StatusAccepted, TriggerRunResponse{Status: "scheduled"})
}
