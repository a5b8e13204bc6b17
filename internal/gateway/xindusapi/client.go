// Package xindusapi is the HTTP client for the Xindus logistics platform.
package xindusapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shipdraft/internal/config"
	"shipdraft/internal/port"
	"shipdraft/internal/xindus"
)

// Client implements port.LogisticsGateway against the Xindus API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Xindus API client from config.
func NewClient(cfg *config.XindusConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
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
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

var _ port.LogisticsGateway = (*Client)(nil)

type createResponse struct {
	ShipmentID string `json:"shipment_id"`
}

// CreateShipment submits a translated payload and returns the platform's
// shipment identifier.
func (c *Client) CreateShipment(ctx context.Context, payload *xindus.Payload) (string, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling shipment payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/shipments", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling xindus API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("xindus API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out createResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshaling shipment response: %w", err)
	}
	return out.ShipmentID, nil
}
