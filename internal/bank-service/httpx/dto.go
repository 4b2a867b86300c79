package httpx

import (
	"encoding/json"
	"net/http"
)

type TransferRequest struct {
	ClientID string  `json:"client_id"`
	Amount   float64 `json:"amount"`
}

type ReadyResponse struct {
	Ready bool `json:"ready"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var statusOK = StatusResponse{Status: "ok"}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
