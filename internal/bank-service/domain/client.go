package domain

import "errors"

// ErrClientNotFound is returned when an operation references a client id
// with no account.
var ErrClientNotFound = errors.New("client not found")

// Client is the primary ledger entity. Balance is debited only when a
// purchase saga confirms; pending debits live in the reservations map until
// then.
type Client struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}
