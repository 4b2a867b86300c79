// Package requestid propagates a per-request correlation id from the inbound
// HTTP middleware to outbound participant calls.
package requestid

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type ctxKey string

// Header is the wire name of the correlation id.
const Header = "X-Request-Id"

const ctxKeyRequestID ctxKey = "request_id"

// Middleware copies the id assigned by chi's RequestID middleware (or sent
// by the caller) into the context under this package's key, so outbound
// clients can forward it. Mount it after middleware.RequestID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		ctx := NewContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NewContext returns a context carrying the given request id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// FromContext returns the request id stored in ctx, or "" if absent.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}
