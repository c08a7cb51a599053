// Package ynab is the client for the remote budget ledger API.
package ynab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zachdean/ynab-reporting-pipeline/internal/logger"
)

// APIError is a non-200 response from the ledger API. Server-side failures
// are retryable; client-side failures (bad budget id, expired token) are not.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger api returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is transient.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// Client fetches budget resources from the ledger API with bearer-token
// auth. The zero value is not usable; construct with NewClient.
type Client struct {
	baseEndpoint string
	budgetID     string
	token        string
	httpClient   *http.Client
}

// NewClient creates a ledger client for one budget.
func NewClient(baseEndpoint, budgetID, token string) *Client {
	return &Client{
		baseEndpoint: strings.TrimRight(baseEndpoint, "/"),
		budgetID:     budgetID,
		token:        token,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchRaw gets a budget resource ("accounts", "transactions",
// "months/{YYYY-MM-01}", "months") and returns the raw response body. The
// body is validated to be well-formed JSON before it is handed to callers.
func (c *Client) FetchRaw(ctx context.Context, resource string) ([]byte, error) {
	requestURI := fmt.Sprintf("%s/budgets/%s/%s", c.baseEndpoint, c.budgetID, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURI, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", resource, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %q: %w", resource, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("uri", requestURI).Int("status", resp.StatusCode).Msg("fetched ledger resource")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: %w", resource, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %q: response is not valid JSON", resource)
	}

	return body, nil
}

// ListMonths enumerates every budget month known to the ledger, oldest first
// as returned by the API.
func (c *Client) ListMonths(ctx context.Context) ([]MonthSummary, error) {
	body, err := c.FetchRaw(ctx, "months")
	if err != nil {
		return nil, err
	}

	var parsed MonthsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode months response: %w", err)
	}
	return parsed.Data.Months, nil
}
