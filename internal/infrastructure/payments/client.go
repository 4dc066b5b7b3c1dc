// Package payments implements the HTTP client for the ACH payment
// network: customers, on-demand authorizations, funding sources, and
// transfers. New resources are returned through the Location header.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

var environmentHosts = map[string]string{
	"sandbox":    "https://api-sandbox.dwolla.com",
	"production": "https://api.dwolla.com",
}

// Config holds the credentials injected at process start.
type Config struct {
	Key         string
	Secret      string
	Environment string
}

// ClientInterface allows domain services to mock the payment network in tests.
type ClientInterface interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreateOnDemandAuthorization(ctx context.Context) (string, error)
	CreateFundingSource(ctx context.Context, customerURL string, params FundingSourceParams) (string, error)
	CreateTransfer(ctx context.Context, params TransferParams) (string, error)
}

// Client handles communication with the payment network API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new payment network client for the configured environment.
func NewClient(cfg Config) *Client {
	baseURL, ok := environmentHosts[cfg.Environment]
	if !ok {
		baseURL = environmentHosts["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		key:        cfg.Key,
		secret:     cfg.Secret,
	}
}

// CustomerParams describes a customer to provision on the network.
type CustomerParams struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Type      string `json:"type"`
}

// FundingSourceParams describes a funding source to attach to a customer.
// The processor token scopes the network to a single externally-linked
// account; the authorization link must come from a fresh on-demand
// authorization and is single-use.
type FundingSourceParams struct {
	Name              string
	ProcessorToken    string
	AuthorizationLink string
}

// TransferParams describes a transfer between two funding sources.
type TransferParams struct {
	SourceURL      string
	DestinationURL string
	Amount         string
	Currency       string
}

// apiError is the error envelope the network returns on failures.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("payment network error: %s: %s", e.Code, e.Message)
}

// CreateCustomer provisions a customer and returns its resource URL.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	if params.Type == "" {
		params.Type = "personal"
	}
	return c.postForLocation(ctx, c.baseURL+"/customers", params)
}

// CreateOnDemandAuthorization obtains a fresh single-use authorization
// link required before a funding source can be created.
func (c *Client) CreateOnDemandAuthorization(ctx context.Context) (string, error) {
	location, err := c.postForLocation(ctx, c.baseURL+"/on-demand-authorizations", struct{}{})
	if err != nil {
		return "", err
	}
	return location, nil
}

// CreateFundingSource registers a linked bank account as a funding source
// under the customer and returns the funding source URL.
func (c *Client) CreateFundingSource(ctx context.Context, customerURL string, params FundingSourceParams) (string, error) {
	body := map[string]any{
		"name":       params.Name,
		"plaidToken": params.ProcessorToken,
		"_links": map[string]any{
			"on-demand-authorization": map[string]string{"href": params.AuthorizationLink},
		},
	}
	return c.postForLocation(ctx, customerURL+"/funding-sources", body)
}

// CreateTransfer submits a transfer between two funding sources and
// returns the new transfer's resource URL.
func (c *Client) CreateTransfer(ctx context.Context, params TransferParams) (string, error) {
	body := map[string]any{
		"_links": map[string]any{
			"source":      map[string]string{"href": params.SourceURL},
			"destination": map[string]string{"href": params.DestinationURL},
		},
		"amount": map[string]string{
			"currency": params.Currency,
			"value":    params.Amount,
		},
	}
	return c.postForLocation(ctx, c.baseURL+"/transfers", body)
}

// CustomerIDFromURL extracts the customer id from its resource URL.
func CustomerIDFromURL(customerURL string) string {
	idx := strings.LastIndex(customerURL, "/")
	if idx < 0 || idx == len(customerURL)-1 {
		return ""
	}
	return customerURL[idx+1:]
}

// token returns a valid OAuth access token, fetching a new one via the
// client-credentials grant when the cached token is missing or stale.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	c.accessToken = tokenResp.AccessToken
	// Refresh one minute early to avoid using a token mid-expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

// postForLocation sends an authenticated POST and returns the Location
// header of the created resource. An Idempotency-Key guards against
// double-creation on network-level retries.
func (c *Client) postForLocation(ctx context.Context, url string, body any) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Accept", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Code == "" {
			return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", &apiErr
	}

	if location := resp.Header.Get("Location"); location != "" {
		return location, nil
	}

	// Some resources return their canonical link in the body instead.
	var hal struct {
		Links struct {
			Self struct {
				Href string `json:"href"`
			} `json:"self"`
		} `json:"_links"`
	}
	if err := json.Unmarshal(respBody, &hal); err == nil && hal.Links.Self.Href != "" {
		return hal.Links.Self.Href, nil
	}

	return "", fmt.Errorf("response carried no Location header or self link")
}
