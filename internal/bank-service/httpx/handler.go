// Package httpx exposes the bank participant over HTTP/JSON: the account
// reads plus the transaction contract endpoints driven by the coordinator.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/bookstore-sagas/internal/bank-service/app"
	"github.com/jcmexdev/bookstore-sagas/internal/bank-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/requestid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler handles the bank participant's inbound RPC.
type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(otelhttp.NewMiddleware("bank-service"))
	r.Use(middleware.RequestID)
	r.Use(requestid.Middleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/clients", h.Clients)
	r.Post("/transfers", h.InitiateTransfer)
	r.Get("/transaction/ready", h.IsReady)
	r.Post("/transaction/confirm", h.Confirm)
	r.Post("/transaction/rollback", h.Rollback)
	return r
}

// Clients returns every account, keyed by client id.
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Clients(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// InitiateTransfer reserves a pending debit against an account.
func (h *Handler) InitiateTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if err := h.svc.InitiateTransfer(r.Context(), req.ClientID, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// IsReady reports whether every pending debit is still covered.
func (h *Handler) IsReady(w http.ResponseWriter, r *http.Request) {
	ready, err := h.svc.IsReady(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Ready: ready})
}

// Confirm applies all pending debits to their accounts.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Confirm(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// Rollback discards all pending debits.
func (h *Handler) Rollback(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Rollback(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrClientNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
