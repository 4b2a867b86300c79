package domain

import "errors"

// ErrBookNotFound is returned when an operation references a book id that is
// absent from the catalogue.
var ErrBookNotFound = errors.New("book not found")

// Book is the primary inventory entity. Quantity is decremented only when a
// purchase saga confirms; tentative purchases live in the reservations map
// until then.
type Book struct {
	Title    string  `json:"title"`
	Quantity uint32  `json:"quantity"`
	Price    float64 `json:"price"`
}
