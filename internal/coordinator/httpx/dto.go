package httpx

import (
	"encoding/json"
	"net/http"
)

type PurchaseRequest struct {
	Title    string `json:"title"`
	Quantity int64  `json:"quantity"`
	Customer string `json:"customer"`
}

type PurchaseResponse struct {
	SagaID string `json:"saga_id"`
	Status string `json:"status"`
}

type SagaStatusResponse struct {
	SagaID      string   `json:"saga_id"`
	Status      string   `json:"status"`
	CurrentStep string   `json:"current_step,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	SagaID  string `json:"saga_id,omitempty"`
}

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
