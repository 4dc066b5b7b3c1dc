// Package aggregator implements the HTTP client for the bank-data
// aggregation API: public-token exchange, account metadata, processor
// tokens, and on-demand transaction retrieval.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	exchangePath     = "/item/public_token/exchange"
	accountsPath     = "/accounts/get"
	processorPath    = "/processor/token/create"
	transactionsPath = "/transactions/get"
)

// environmentHosts maps the configured environment name to the API host.
var environmentHosts = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// Config holds the credentials injected at process start.
type Config struct {
	ClientID    string
	Secret      string
	Environment string
}

// Client handles communication with the aggregation API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// ClientInterface allows domain services to mock the aggregator in tests.
type ClientInterface interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)
	GetAccounts(ctx context.Context, accessToken string) ([]Account, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error)
	GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]Transaction, error)
}

// NewClient creates a new aggregation API client for the configured environment.
func NewClient(cfg Config) *Client {
	baseURL, ok := environmentHosts[cfg.Environment]
	if !ok {
		baseURL = environmentHosts["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
	}
}

// ExchangeResult is the durable credential pair returned for a public token.
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// Account represents one bank account entry from the aggregator.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// Balances carries the point-in-time balance snapshot for an account.
type Balances struct {
	Available    *float64 `json:"available"`
	Current      *float64 `json:"current"`
	CurrencyCode *string  `json:"iso_currency_code"`
}

// Transaction represents one transaction entry from the aggregator.
type Transaction struct {
	TransactionID string   `json:"transaction_id"`
	AccountID     string   `json:"account_id"`
	Name          string   `json:"name"`
	Amount        float64  `json:"amount"`
	Date          string   `json:"date"`
	Pending       bool     `json:"pending"`
	Category      []string `json:"category"`
	PaymentChannel string  `json:"payment_channel"`
}

// apiError is the error envelope the aggregation API returns on non-200s.
type apiError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("aggregator API error: %s/%s: %s", e.ErrorType, e.ErrorCode, e.ErrorMessage)
}

// ExchangePublicToken exchanges a single-use public token for a durable
// access token and the item id of the new institution link. Consumed
// public tokens always fail here.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	body := map[string]string{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"public_token": publicToken,
	}

	var result ExchangeResult
	if err := c.post(ctx, exchangePath, body, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("exchange returned empty access token")
	}
	return &result, nil
}

// GetAccounts fetches account metadata and balances for an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	body := map[string]string{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"access_token": accessToken,
	}

	var result struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.post(ctx, accountsPath, body, &result); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

// CreateProcessorToken requests a token scoped to one account that the
// named processor can consume without ever seeing the raw access token.
func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	body := map[string]string{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    processor,
	}

	var result struct {
		ProcessorToken string `json:"processor_token"`
	}
	if err := c.post(ctx, processorPath, body, &result); err != nil {
		return "", err
	}
	if result.ProcessorToken == "" {
		return "", fmt.Errorf("processor token response was empty")
	}
	return result.ProcessorToken, nil
}

// GetTransactions fetches transactions for an access token in the given
// date range (YYYY-MM-DD). Nothing is persisted locally; the aggregator
// is the system of record.
func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]Transaction, error) {
	body := map[string]string{
		"client_id":    c.clientID,
		"secret":       c.secret,
		"access_token": accessToken,
		"start_date":   startDate,
		"end_date":     endDate,
	}

	var result struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.post(ctx, transactionsPath, body, &result); err != nil {
		return nil, err
	}
	return result.Transactions, nil
}

// post sends a JSON request and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.ErrorCode == "" {
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return &apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
