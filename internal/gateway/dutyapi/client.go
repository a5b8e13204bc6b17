// Package dutyapi is the HTTP client for the duty-rate lookup service.
package dutyapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/internal/xindus"
)

// Client implements port.DutyLookup against the duty REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a duty API client from config.
func NewClient(cfg *config.ServiceEndpointConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientWithEndpoint creates a client pointing at a custom base URL (for testing).
func NewClientWithEndpoint(endpoint string) *Client {
	return &Client{
		baseURL: endpoint,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

var _ port.DutyLookup = (*Client)(nil)

// Lookup resolves duty rates for one classification code. The code is
// stripped of separators before the call so formatting differences in draft
// data do not produce distinct upstream queries.
func (c *Client) Lookup(ctx context.Context, code, destinationCountry, originCountry string) (*domain.DutyRates, error) {
	q := url.Values{}
	q.Set("code", xindus.StripCode(code))
	q.Set("destination", destinationCountry)
	if originCountry != "" {
		q.Set("origin", originCountry)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/duty-rates?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling duty API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duty API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var rates domain.DutyRates
	if err := json.Unmarshal(respBody, &rates); err != nil {
		return nil, fmt.Errorf("unmarshaling duty rates: %w", err)
	}
	return &rates, nil
}
