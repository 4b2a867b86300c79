// Package httpx exposes the bookstore participant over HTTP/JSON: the
// catalogue reads plus the transaction contract endpoints driven by the
// coordinator.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/app"
	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/cache"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/requestid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// availableBooksTTL bounds how stale the cached catalogue listing can be;
// confirms are not write-through to the cache.
const availableBooksTTL = 5 * time.Second

// Handler handles the bookstore participant's inbound RPC.
type Handler struct {
	svc   *app.Service
	cache cache.Cache // nil-safe: caching skipped if nil
}

// NewHandler wires the participant service. c may be nil — the available
// books listing is then served from the store on every call.
func NewHandler(svc *app.Service, c cache.Cache) *Handler {
	return &Handler{svc: svc, cache: c}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(otelhttp.NewMiddleware("bookstore-service"))
	r.Use(middleware.RequestID)
	r.Use(requestid.Middleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/books", h.AvailableBooks)
	r.Get("/books/{id}/price", h.BookPrice)
	r.Post("/reservations", h.RecordPurchase)
	r.Get("/transaction/ready", h.IsReady)
	r.Post("/transaction/confirm", h.Confirm)
	r.Post("/transaction/rollback", h.Rollback)
	return r
}

// AvailableBooks returns the catalogue entries that still have stock.
func (h *Handler) AvailableBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cacheKey string
	if h.cache != nil {
		cacheKey = h.cache.GenerateKey("available_books", "all")
		if cached, err := h.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	books, err := h.svc.AvailableBooks(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if h.cache != nil {
		if body, err := json.Marshal(books); err == nil {
			if err := h.cache.Set(ctx, cacheKey, string(body), availableBooksTTL); err != nil {
				slog.WarnContext(ctx, "failed to cache available books", "error", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, books)
}

// BookPrice returns the unit price for a book id.
func (h *Handler) BookPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.svc.BookPrice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PriceResponse{Price: price})
}

// RecordPurchase reserves stock for a pending purchase.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if err := h.svc.RecordPurchase(r.Context(), req.BookID, req.Quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// IsReady reports whether every outstanding reservation is still satisfiable.
func (h *Handler) IsReady(w http.ResponseWriter, r *http.Request) {
	ready, err := h.svc.IsReady(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Ready: ready})
}

// Confirm applies all outstanding reservations to the catalogue.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Confirm(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// Rollback discards all outstanding reservations.
func (h *Handler) Rollback(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Rollback(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
