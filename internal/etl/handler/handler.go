package handler

import (
	"encoding/json"
	"net/http"

	"bankscap/internal/etl"
)

type RunScheduler interface {
	LastRun() (etl.RunStatus, bool)
	Trigger() error
}

type Handler struct {
	runs RunScheduler
}

func NewRunHandler(runs RunScheduler) *Handler {
	return &Handler{runs: runs}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{Error: errorMsg})
}
