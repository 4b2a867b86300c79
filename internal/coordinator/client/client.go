// Package client implements the coordinator's participant ports over
// HTTP/JSON. Each participant gets its own resty client; the request id from
// the inbound context is forwarded on every outbound call.
package client

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/requestid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const defaultTimeout = 10 * time.Second

// codeNotFound is the participant error code for a missing book or client.
const codeNotFound = "not_found"

// errorBody is the participants' error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func newRestyClient(baseURL string) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout)

	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if id := requestid.FromContext(r.Context()); id != "" {
			r.SetHeader(requestid.Header, id)
		}
		// Inject the traceparent header so participant spans join the
		// coordinator's trace.
		otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(r.Header))
		return nil
	})

	return c
}

// apiError maps a participant error response back to an error value.
// A not_found code is translated to the participant's sentinel so the
// coordinator's callers can errors.Is on it across the transport boundary.
func apiError(service, path string, status int, body errorBody, notFound error) error {
	if body.Error == codeNotFound {
		return fmt.Errorf("%s: %s: %s: %w", service, path, body.Message, notFound)
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return fmt.Errorf("%s: %s: unexpected status %d: %s", service, path, status, msg)
}
