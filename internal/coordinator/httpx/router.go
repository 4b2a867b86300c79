package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/requestid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(otelhttp.NewMiddleware("coordinator-service"))
	r.Use(middleware.RequestID)
	r.Use(requestid.Middleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/purchases", handler.ProcessPurchase)
	r.Get("/purchases/{id}", handler.GetPurchase)
	return r
}
