package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/jcmexdev/bookstore-sagas/internal/bank-service/domain"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator"
)

// BankClient is the HTTP implementation of coordinator.Bank.
type BankClient struct {
	http *resty.Client
}

var _ coordinator.Bank = (*BankClient)(nil)

func NewBankClient(baseURL string) *BankClient {
	return &BankClient{http: newRestyClient(baseURL)}
}

func (c *BankClient) Clients(ctx context.Context) (map[string]domain.Client, error) {
	var clients map[string]domain.Client
	var apiErr errorBody

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&clients).
		SetError(&apiErr).
		Get("/clients")
	if err != nil {
		return nil, fmt.Errorf("bank: list clients: %w", err)
	}
	if resp.IsError() {
		return nil, apiError("bank", "/clients", resp.StatusCode(), apiErr, domain.ErrClientNotFound)
	}
	return clients, nil
}

func (c *BankClient) InitiateTransfer(ctx context.Context, clientID string, amount float64) error {
	body := map[string]any{"client_id": clientID, "amount": amount}
	return c.post(ctx, "/transfers", body)
}

func (c *BankClient) IsReady(ctx context.Context) (bool, error) {
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
		return false, fmt.Errorf("bank: readiness: %w", err)
	}
	if resp.IsError() {
		return false, apiError("bank", "/transaction/ready", resp.StatusCode(), apiErr, domain.ErrClientNotFound)
	}
	return out.Ready, nil
}

func (c *BankClient) Confirm(ctx context.Context) error {
	return c.post(ctx, "/transaction/confirm", nil)
}

func (c *BankClient) Rollback(ctx context.Context) error {
	return c.post(ctx, "/transaction/rollback", nil)
}

func (c *BankClient) post(ctx context.Context, path string, body any) error {
	var apiErr errorBody

	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("bank: %s: %w", path, err)
	}
	if resp.IsError() {
		return apiError("bank", path, resp.StatusCode(), apiErr, domain.ErrClientNotFound)
	}
	return nil
}
