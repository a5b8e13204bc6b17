package handler

import (
	"github.com/google/uuid"

	"shipdraft/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Response Types ---

// Response represents the standard success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody represents the standard error envelope.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}

// BatchSubmitResponse represents the batch submission response data.
type BatchSubmitResponse struct {
	BatchID   uuid.UUID `json:"batch_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	FileCount int       `json:"file_count" example:"3"`
}

// SessionResponse represents the session state response data.
type SessionResponse struct {
	Data               domain.Shipment `json:"data"`
	PendingCorrections int             `json:"pending_corrections" example:"2"`
}

// FileURLResponse represents the presigned download URL response data.
type FileURLResponse struct {
	DownloadURL string `json:"download_url" example:"https://bucket.s3.amazonaws.com/drafts/..."`
}

// AddressEditResponse represents the address edit response data.
type AddressEditResponse struct {
	UpdatedBoxes []int `json:"updated_boxes" example:"0,2,3"`
}
