package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shipdraft/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondErrorDetails sends an error response carrying structured details,
// e.g. a validation issue list.
func RespondErrorDetails(c *gin.Context, status int, code, msg string, details interface{}) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg, Details: details},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound, "DRAFT_NOT_FOUND", "draft not found"
	case errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound, "BATCH_NOT_FOUND", "batch not found"
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, "FILE_NOT_FOUND", "file is not attached to this draft"
	case errors.Is(err, domain.ErrDraftConflict):
		return http.StatusConflict, "DRAFT_CONFLICT", "draft was modified elsewhere; reload and retry"
	case errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusConflict, "NO_ACTIVE_SESSION", "no correction session is open for this draft"
	case errors.Is(err, domain.ErrUnknownFieldPath):
		return http.StatusBadRequest, "UNKNOWN_FIELD_PATH", "unknown correction field path"
	case errors.Is(err, domain.ErrCollectionFieldPath):
		return http.StatusBadRequest, "COLLECTION_FIELD_PATH", "boxes and products are edited through their own endpoints"
	case errors.Is(err, domain.ErrInvalidFieldValue):
		return http.StatusBadRequest, "INVALID_FIELD_VALUE", "invalid value for this field"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "INVALID_STATUS", "invalid draft status; allowed: pending_review, approved, rejected, archived"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyBatch):
		return http.StatusBadRequest, "EMPTY_BATCH", "at least one file is required"
	case errors.Is(err, domain.ErrValidationBlocked):
		return http.StatusUnprocessableEntity, "VALIDATION_BLOCKED", "draft has validation issues and cannot be forwarded"
	case errors.Is(err, domain.ErrPipelineUnavailable):
		return http.StatusBadGateway, "PIPELINE_UNAVAILABLE", "extraction pipeline is unavailable"
	case errors.Is(err, domain.ErrTrackingStalled):
		return http.StatusBadGateway, "TRACKING_STALLED", "batch tracking gave up after repeated poll failures"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status == http.StatusInternalServerError {
		log.Printf("handler: internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	RespondError(c, status, code, msg)
}
