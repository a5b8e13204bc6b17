// Package pipelineapi is the HTTP client for the extraction pipeline service.
// Progress events are consumed over SSE; the active-batches query backs the
// tracker's polling fallback.
package pipelineapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

// Client implements port.ExtractionPipeline against the pipeline REST API.
type Client struct {
	baseURL string
	apiKey  string
	// client is used for request/response calls; streaming requests use
	// streamClient, which carries no timeout so SSE connections stay open.
	client       *http.Client
	streamClient *http.Client
}

// NewClient creates a pipeline API client from config.
func NewClient(cfg *config.ServiceEndpointConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		client:       &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

// NewClientWithEndpoint creates a client pointing at a custom base URL (for testing).
func NewClientWithEndpoint(endpoint string) *Client {
	return &Client{
		baseURL:      endpoint,
		client:       &http.Client{Timeout: 60 * time.Second},
		streamClient: &http.Client{},
	}
}

var _ port.ExtractionPipeline = (*Client)(nil)

type submitRequest struct {
	Files []port.StagedFile `json:"files"`
}

type submitResponse struct {
	BatchID uuid.UUID `json:"batch_id"`
}

// Submit registers a new batch over the staged files and returns its id.
func (c *Client) Submit(ctx context.Context, files []port.StagedFile) (uuid.UUID, error) {
	if len(files) == 0 {
		return uuid.Nil, domain.ErrEmptyBatch
	}

	reqBody, err := json.Marshal(submitRequest{Files: files})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling batch submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/batches", bytes.NewReader(reqBody))
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("calling pipeline API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return uuid.Nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return uuid.Nil, fmt.Errorf("pipeline API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out submitResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshaling batch id: %w", err)
	}
	return out.BatchID, nil
}

// Events opens the SSE stream for one batch. The returned channel closes when
// the stream ends; a close without a terminal snapshot means the transport
// dropped, and the caller is expected to fall back to polling.
func (c *Client) Events(ctx context.Context, batchID uuid.UUID) (<-chan domain.BatchSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/batches/"+batchID.String()+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening event stream: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, domain.ErrBatchNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("pipeline API error (status %d): %s", resp.StatusCode, string(body))
	}

	out := make(chan domain.BatchSnapshot)
	go c.readEvents(ctx, resp.Body, out)
	return out, nil
}

// readEvents scans SSE frames off the stream body. Only "data:" lines
// carrying a snapshot are forwarded; comments and other fields are skipped.
func (c *Client) readEvents(ctx context.Context, body io.ReadCloser, out chan<- domain.BatchSnapshot) {
	defer close(out)
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var snap domain.BatchSnapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			log.Printf("pipelineapi.Client: skipping malformed event: %v", err)
			continue
		}

		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}
		if snap.Terminal() {
			return
		}
	}
}

type activeBatchesResponse struct {
	Batches []domain.Batch `json:"batches"`
}

// ActiveBatches returns the batches the pipeline is still working on.
// Terminal batches drop out of this set.
func (c *Client) ActiveBatches(ctx context.Context) ([]domain.Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/batches/active", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling pipeline API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pipeline API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out activeBatchesResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling active batches: %w", err)
	}
	return out.Batches, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
