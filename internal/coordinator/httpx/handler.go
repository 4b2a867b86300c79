// Package httpx is the coordinator's front door: input-shape validation of
// the purchase submission and the synchronous purchase endpoint. Validation
// here is deliberately thin — shape checks only, no business rules.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	bankdomain "github.com/jcmexdev/bookstore-sagas/internal/bank-service/domain"
	bookdomain "github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator/sagalog"
)

// Handler handles incoming purchase submissions and status lookups.
type Handler struct {
	coord   *coordinator.Coordinator
	sagaLog sagalog.Repository // nil-safe: status lookups return 404 if nil
}

func NewHandler(coord *coordinator.Coordinator, sagaLog sagalog.Repository) *Handler {
	return &Handler{coord: coord, sagaLog: sagaLog}
}

// ProcessPurchase validates the submission shape and runs the saga to
// completion before answering — success means both participants confirmed.
func (h *Handler) ProcessPurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid_title", "title must not be empty")
		return
	}
	if req.Quantity <= 0 || req.Quantity > math.MaxUint32 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity out of range")
		return
	}
	if req.Customer == "" {
		writeError(w, http.StatusBadRequest, "invalid_customer", "customer must not be empty")
		return
	}

	sagaID := uuid.NewString()
	slog.InfoContext(r.Context(), "processing purchase",
		"saga_id", sagaID, "title", req.Title, "quantity", req.Quantity, "customer", req.Customer)

	err := h.coord.ProcessPurchase(r.Context(), sagaID, coordinator.PurchaseRequest{
		Title:    req.Title,
		Quantity: uint32(req.Quantity),
		Customer: req.Customer,
	})
	if err != nil {
		status, code := mapSagaError(err)
		writeJSON(w, status, ErrorResponse{Error: code, Message: err.Error(), SagaID: sagaID})
		return
	}

	writeJSON(w, http.StatusOK, PurchaseResponse{SagaID: sagaID, Status: "completed"})
}

// GetPurchase returns the latest saga log entry for a purchase.
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	sagaID := chi.URLParam(r, "id")

	if h.sagaLog == nil {
		writeError(w, http.StatusNotFound, "not_found", "saga log not configured")
		return
	}

	entry, err := h.sagaLog.GetLatest(r.Context(), sagaID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}

	var errs []string
	_ = json.Unmarshal([]byte(entry.ErrorMessages), &errs)

	writeJSON(w, http.StatusOK, SagaStatusResponse{
		SagaID:      entry.SagaID,
		Status:      string(entry.Status),
		CurrentStep: entry.CurrentStep,
		Errors:      errs,
		UpdatedAt:   entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func mapSagaError(err error) (int, string) {
	switch {
	case errors.Is(err, coordinator.ErrNotReady):
		return http.StatusConflict, "not_ready"
	case errors.Is(err, bookdomain.ErrBookNotFound), errors.Is(err, bankdomain.ErrClientNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusBadGateway, "transaction_failed"
	}
}
