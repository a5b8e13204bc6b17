// Package draftsapi is the HTTP client for the draft persistence service.
package draftsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

// Client implements port.DraftsService against the drafts REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a drafts API client from config.
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

var _ port.DraftsService = (*Client)(nil)

type listResponse struct {
	Drafts []domain.Draft `json:"drafts"`
	Total  int            `json:"total"`
}

func (c *Client) List(ctx context.Context, filter port.DraftFilter) ([]domain.Draft, int, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.BatchID != uuid.Nil {
		q.Set("batch_id", filter.BatchID.String())
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	endpoint := c.baseURL + "/v1/drafts"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, 0, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("unmarshaling draft list: %w", err)
	}
	return resp.Drafts, resp.Total, nil
}

func (c *Client) Get(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	body, err := c.do(ctx, http.MethodGet, c.draftURL(draftID), nil, nil)
	if err != nil {
		return nil, err
	}
	var draft domain.Draft
	if err := json.Unmarshal(body, &draft); err != nil {
		return nil, fmt.Errorf("unmarshaling draft: %w", err)
	}
	return &draft, nil
}

type correctionsRequest struct {
	Revision    int64               `json:"revision"`
	Corrections []domain.Correction `json:"corrections"`
}

// ApplyCorrections sends the patch with the caller's revision token. A 409
// from the service means the draft moved underneath the caller and maps to
// domain.ErrDraftConflict with the pending patch untouched on the caller side.
func (c *Client) ApplyCorrections(ctx context.Context, draftID uuid.UUID, revision int64, patch []domain.Correction) (*domain.Draft, error) {
	reqBody, err := json.Marshal(correctionsRequest{Revision: revision, Corrections: patch})
	if err != nil {
		return nil, fmt.Errorf("marshaling corrections: %w", err)
	}

	body, err := c.do(ctx, http.MethodPatch, c.draftURL(draftID)+"/corrections", bytes.NewReader(reqBody), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return nil, err
	}

	var draft domain.Draft
	if err := json.Unmarshal(body, &draft); err != nil {
		return nil, fmt.Errorf("unmarshaling corrected draft: %w", err)
	}
	return &draft, nil
}

func (c *Client) UpdateStatus(ctx context.Context, draftID uuid.UUID, status domain.DraftStatus) error {
	reqBody, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return fmt.Errorf("marshaling status update: %w", err)
	}
	_, err = c.do(ctx, http.MethodPatch, c.draftURL(draftID)+"/status", bytes.NewReader(reqBody), map[string]string{
		"Content-Type": "application/json",
	})
	return err
}

func (c *Client) Delete(ctx context.Context, draftID uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, c.draftURL(draftID), nil, nil)
	return err
}

func (c *Client) AttachFile(ctx context.Context, draftID uuid.UUID, file domain.DraftFile) error {
	reqBody, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling file attachment: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, c.draftURL(draftID)+"/files", bytes.NewReader(reqBody), map[string]string{
		"Content-Type": "application/json",
	})
	return err
}

func (c *Client) DetachFile(ctx context.Context, draftID, fileID uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, c.draftURL(draftID)+"/files/"+fileID.String(), nil, nil)
	return err
}

func (c *Client) draftURL(draftID uuid.UUID) string {
	return c.baseURL + "/v1/drafts/" + draftID.String()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling drafts API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return respBody, nil
	case http.StatusNotFound:
		return nil, domain.ErrDraftNotFound
	case http.StatusConflict:
		return nil, domain.ErrDraftConflict
	default:
		return nil, fmt.Errorf("drafts API error (status %d): %s", resp.StatusCode, string(respBody))
	}
}
