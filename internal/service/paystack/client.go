package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/planmoni/depositwatch/internal/logger"
)

const (
	// Transport failure or non-2xx status from the processor.
	// Transient: skip the current pass and retry on the next one.
	CodeUnavailable = "unavailable"

	// 2xx response that could not be decoded or carried status=false.
	// Treated the same as unavailable by callers.
	CodeMalformed = "malformed"
)

type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, error: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

type Customer struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	CustomerCode string `json:"customer_code"`
}

type Authorization struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankCode      string `json:"bank_code"`
}

// Transaction as reported by the processor. Amount is in minor units (kobo).
type Transaction struct {
	ID            int64          `json:"id"`
	Amount        int64          `json:"amount"`
	Currency      string         `json:"currency"`
	Status        string         `json:"status"`
	Channel       string         `json:"channel"`
	Reference     string         `json:"reference"`
	Customer      Customer       `json:"customer"`
	Authorization *Authorization `json:"authorization,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ReceiverAccountNumber returns the virtual account number the transfer was
// received on, or empty string if the metadata does not carry it. Transactions
// without this field are not confirmed virtual-account credits.
func (t Transaction) ReceiverAccountNumber() string {
	if t.Metadata == nil {
		return ""
	}

	number, _ := t.Metadata["receiver_account_number"].(string)
	return number
}

type ResolvedAccount struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankID        int64  `json:"bank_id"`
}

type Bank struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
	IsActive bool   `json:"active"`
}

type Client struct {
	BaseURL string

	secretKey string
	client    *http.Client
	logger    logger.Logger
}

func NewClient(baseURL string, secretKey string, logger logger.Logger) *Client {
	return &Client{
		BaseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{},
		logger:    logger,
	}
}

// ListTransactions returns every transaction the processor knows for the
// configured credentials. Filtering down to one account happens locally.
func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction

	err := c.get(ctx, "/transaction", nil, &transactions)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// ResolveAccount resolves an account number and bank code to the account name
func (c *Client) ResolveAccount(ctx context.Context, accountNumber string, bankCode string) (ResolvedAccount, error) {
	var account ResolvedAccount

	query := url.Values{}
	query.Set("account_number", accountNumber)
	query.Set("bank_code", bankCode)

	err := c.get(ctx, "/bank/resolve", query, &account)
	if err != nil {
		return account, err
	}

	return account, nil
}

// ListBanks returns the processor's bank directory
func (c *Client) ListBanks(ctx context.Context) ([]Bank, error) {
	var banks []Bank

	err := c.get(ctx, "/bank", nil, &banks)
	if err != nil {
		return nil, err
	}

	return banks, nil
}

// get performs an authorized GET and decodes the standard {status, data} envelope
func (c *Client) get(ctx context.Context, path string, query url.Values, data any) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reqURL := c.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewError(CodeUnavailable, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return NewError(CodeUnavailable, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Paystack request failed", "path", path, "status_code", resp.StatusCode)
		return NewError(CodeUnavailable, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, path))
	}

	envelope := struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn("Failed to decode Paystack response", "path", path, "error", err)
		return NewError(CodeMalformed, fmt.Errorf("failed to decode response: %w", err))
	}

	if !envelope.Status {
		return NewError(CodeMalformed, fmt.Errorf("processor rejected request: %s", envelope.Message))
	}

	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return NewError(CodeMalformed, fmt.Errorf("failed to decode response data: %w", err))
	}

	return nil
}
