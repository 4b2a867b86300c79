package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator"
)

// BookstoreClient is the HTTP implementation of coordinator.Bookstore.
type BookstoreClient struct {
	http *resty.Client
}

var _ coordinator.Bookstore = (*BookstoreClient)(nil)

func NewBookstoreClient(baseURL string) *BookstoreClient {
	return &BookstoreClient{http: newRestyClient(baseURL)}
}

func (c *BookstoreClient) AvailableBooks(ctx context.Context) (map[string]domain.Book, error) {
	var books map[string]domain.Book
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&books).
		SetError(&apiErr).
		Get("/books")
	if err != nil {
		return nil, fmt.Errorf("bookstore: list books: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("bookstore", "/books", resp.StatusCode(), apiErr, domain.ErrBookNotFound)
	}
	return books, nil
}

func (c *BookstoreClient) BookPrice(ctx context.Context, bookID string) (float64, error) {
	var out struct {
		Price float64 `json:"price"`
	}
	var apiErr errorBody

	path := fmt.Sprintf("/books/%s/price", bookID)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		return 0, fmt.Errorf("bookstore: book price: %w", err)
	}
	if resp.IsError() {
		return 0, apiError("bookstore", path, resp.StatusCode(), apiErr, domain.ErrBookNotFound)
	}
	return out.Price, nil
}

func (c *BookstoreClient) RecordPurchase(ctx context.Context, bookID string, count uint32) error {
	body := map[string]any{"book_id": bookID, "quantity": count}
	return c.post(ctx, "/reservations", body)
}

func (c *BookstoreClient) IsReady(ctx context.Context) (bool, error) {
	var out struct {
		Ready bool `json:"ready"`
	}
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/transaction/ready")
	if err != nil {
		return false, fmt.Errorf("bookstore: readiness: %w", err)
	}
	if resp.IsError() {
		return false, apiError("bookstore", "/transaction/ready", resp.StatusCode(), apiErr, domain.ErrBookNotFound)
	}
	return out.Ready, nil
}

func (c *BookstoreClient) Confirm(ctx context.Context) error {
	return c.post(ctx, "/transaction/confirm", nil)
}

func (c *BookstoreClient) Rollback(ctx context.Context) error {
	return c.post(ctx, "/transaction/rollback", nil)
}

func (c *BookstoreClient) post(ctx context.Context, path string, body any) error {
	var apiErr errorBody

	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("bookstore: %s: %w", path, err)
	}
	if resp.IsError() {
		return apiError("bookstore", path, resp.StatusCode(), apiErr, domain.ErrBookNotFound)
	}
	return nil
}
