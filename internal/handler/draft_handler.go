package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/internal/service"
	"shipdraft/internal/xindus"
)

// DraftHandler handles draft review and correction endpoints.
type DraftHandler struct {
	draftService service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftService service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// List handles GET /api/v1/drafts
// @Summary List drafts
// @Description List shipment drafts with optional status and batch filters
// @Tags drafts
// @Produce json
// @Param status query string false "Filter by status"
// @Param batch_id query string false "Filter by batch ID"
// @Param offset query int false "Pagination offset"
// @Param limit query int false "Pagination limit (default 50)"
// @Success 200 {object} Response{data=[]domain.Draft} "Drafts"
// @Router /drafts [get]
func (h *DraftHandler) List(c *gin.Context) {
	filter, ok := parseDraftFilter(c)
	if !ok {
		return
	}

	drafts, total, err := h.draftService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, drafts, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

// Get handles GET /api/v1/drafts/:id
// @Summary Get a draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response{data=domain.Draft} "Draft"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Router /drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	draft, err := h.draftService.Get(c.Request.Context(), draftID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, draft)
}

// OpenSession handles POST /api/v1/drafts/:id/session
// @Summary Open a correction session
// @Description Open (or reopen, discarding unflushed edits) a correction session over the draft's effective data
// @Tags sessions
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response{data=domain.Shipment} "Session working data"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Router /drafts/{id}/session [post]
func (h *DraftHandler) OpenSession(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	data, err := h.draftService.OpenSession(c.Request.Context(), draftID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, data)
}

// GetSession handles GET /api/v1/drafts/:id/session
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response{data=SessionResponse} "Working data and pending edit count"
// @Failure 409 {object} ErrorResponseBody "No active session"
// @Router /drafts/{id}/session [get]
func (h *DraftHandler) GetSession(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	data, pending, err := h.draftService.SessionData(draftID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, SessionResponse{Data: *data, PendingCorrections: pending})
}

type stageFieldRequest struct {
	FieldPath string      `json:"field_path" binding:"required"`
	Value     interface{} `json:"value"`
}

// StageField handles POST /api/v1/drafts/:id/session/fields
// @Summary Stage a field correction
// @Description Stage one scalar field edit in the open session; no-op edits are dropped and repeated edits to the same field collapse
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body stageFieldRequest true "Field path and new value"
// @Success 200 {object} Response "Edit staged"
// @Failure 400 {object} ErrorResponseBody "Unknown field path or invalid value"
// @Failure 409 {object} ErrorResponseBody "No active session"
// @Router /drafts/{id}/session/fields [post]
func (h *DraftHandler) StageField(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	var req stageFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "field_path is required")
		return
	}
	if err := h.draftService.StageField(c.Request.Context(), draftID, req.FieldPath, req.Value); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"staged": true})
}

type editBoxAddressRequest struct {
	BoxIndex int                    `json:"box_index"`
	Address  domain.ShipmentAddress `json:"address" binding:"required"`
}

// EditBoxAddress handles POST /api/v1/drafts/:id/session/box-address
// @Summary Edit a box receiver address
// @Description Replace one box's receiver address; the change propagates to other boxes per the shipment's addressing mode
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body editBoxAddressRequest true "Box index and new address"
// @Success 200 {object} Response{data=AddressEditResponse} "Indices of updated boxes"
// @Failure 400 {object} ErrorResponseBody "Box index out of range"
// @Failure 409 {object} ErrorResponseBody "No active session"
// @Router /drafts/{id}/session/box-address [post]
func (h *DraftHandler) EditBoxAddress(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	var req editBoxAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "address is required")
		return
	}
	touched, err := h.draftService.EditBoxAddress(c.Request.Context(), draftID, req.BoxIndex, req.Address)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated_boxes": touched})
}

type editProductRequest struct {
	ProductIndex int                  `json:"product_index"`
	Product      domain.ProductDetail `json:"product" binding:"required"`
}

// EditProduct handles POST /api/v1/drafts/:id/session/products
// @Summary Edit a product summary row
// @Description Update a product row and propagate the changed fields into matching box items; a changed import classification triggers an async duty-rate refresh
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body editProductRequest true "Product index and updated row"
// @Success 200 {object} Response{data=service.ProductEditResult} "Edit outcome"
// @Failure 400 {object} ErrorResponseBody "Product index out of range"
// @Failure 409 {object} ErrorResponseBody "No active session"
// @Router /drafts/{id}/session/products [post]
func (h *DraftHandler) EditProduct(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	var req editProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "product is required")
		return
	}
	result, err := h.draftService.EditProduct(c.Request.Context(), draftID, req.ProductIndex, req.Product)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Flush handles POST /api/v1/drafts/:id/session/flush
// @Summary Flush pending corrections
// @Description Push the session's pending corrections to the drafts service as one atomic patch; a conflict keeps the pending edits
// @Tags sessions
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response{data=domain.Draft} "Updated draft"
// @Failure 409 {object} ErrorResponseBody "Revision conflict or no active session"
// @Router /drafts/{id}/session/flush [post]
func (h *DraftHandler) Flush(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	draft, err := h.draftService.Flush(c.Request.Context(), draftID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, draft)
}

// Discard handles POST /api/v1/drafts/:id/session/discard
// @Summary Discard pending corrections
// @Tags sessions
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response "Edits discarded"
// @Failure 409 {object} ErrorResponseBody "No active session"
// @Router /drafts/{id}/session/discard [post]
func (h *DraftHandler) Discard(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	if err := h.draftService.Discard(draftID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"discarded": true})
}

// CloseSession handles DELETE /api/v1/drafts/:id/session
// @Summary Close a correction session
// @Description Close the session; unflushed edits are lost
// @Tags sessions
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response "Session closed"
// @Router /drafts/{id}/session [delete]
func (h *DraftHandler) CloseSession(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	h.draftService.CloseSession(draftID)
	RespondOK(c, gin.H{"closed": true})
}

type updateStatusRequest struct {
	Status domain.DraftStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/v1/drafts/:id/status
// @Summary Update draft status
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body updateStatusRequest true "New status"
// @Success 200 {object} Response "Status updated"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Router /drafts/{id}/status [patch]
func (h *DraftHandler) UpdateStatus(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "status is required")
		return
	}
	if err := h.draftService.UpdateStatus(c.Request.Context(), draftID, req.Status); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": req.Status})
}

type bulkStatusRequest struct {
	DraftIDs []uuid.UUID        `json:"draft_ids" binding:"required"`
	Status   domain.DraftStatus `json:"status" binding:"required"`
}

// BulkUpdateStatus handles POST /api/v1/drafts/bulk/status
// @Summary Bulk update draft statuses
// @Description Apply a status to many drafts; per-draft failures are reported without stopping the rest
// @Tags drafts
// @Accept json
// @Produce json
// @Param body body bulkStatusRequest true "Draft IDs and new status"
// @Success 200 {object} Response{data=service.BulkStatusResult} "Per-draft outcome"
// @Failure 400 {object} ErrorResponseBody "Invalid status or empty ID list"
// @Router /drafts/bulk/status [post]
func (h *DraftHandler) BulkUpdateStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.DraftIDs) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "draft_ids and status are required")
		return
	}
	result, err := h.draftService.BulkUpdateStatus(c.Request.Context(), req.DraftIDs, req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Delete handles DELETE /api/v1/drafts/:id
// @Summary Delete a draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response "Draft deleted"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Delete(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	if err := h.draftService.Delete(c.Request.Context(), draftID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// Validate handles GET /api/v1/drafts/:id/validation
// @Summary Validate a draft
// @Description Run the pre-forwarding checks; an empty issue list means the draft is ready to forward
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response{data=[]xindus.Issue} "Validation issues (empty when clean)"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Router /drafts/{id}/validation [get]
func (h *DraftHandler) Validate(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	issues, err := h.draftService.Validate(c.Request.Context(), draftID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if issues == nil {
		issues = []xindus.Issue{}
	}
	RespondOK(c, gin.H{"issues": issues, "valid": len(issues) == 0})
}

// Forward handles POST /api/v1/drafts/:id/forward
// @Summary Forward a draft to the logistics platform
// @Description Validate, translate, and submit the draft; validation issues block the submission
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} Response{data=service.ForwardResult} "Shipment created"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Failure 422 {object} ErrorResponseBody "Validation issues"
// @Router /drafts/{id}/forward [post]
func (h *DraftHandler) Forward(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	result, err := h.draftService.Forward(c.Request.Context(), draftID)
	if err != nil {
		if errors.Is(err, domain.ErrValidationBlocked) && result != nil {
			RespondErrorDetails(c, http.StatusUnprocessableEntity, "VALIDATION_BLOCKED",
				"draft has validation issues and cannot be forwarded", result.Issues)
			return
		}
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ExportCSV handles GET /api/v1/drafts/export/csv
// @Summary Export drafts as CSV
// @Description Stream the filtered drafts as a BOM-prefixed CSV, one row per box item
// @Tags exports
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Param batch_id query string false "Filter by batch ID"
// @Success 200 {string} string "CSV file"
// @Router /drafts/export/csv [get]
func (h *DraftHandler) ExportCSV(c *gin.Context) {
	filter, ok := parseDraftFilter(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("drafts_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.draftService.ExportCSV(c.Request.Context(), filter, c.Writer); err != nil {
		HandleError(c, err)
	}
}

// ExportWorkbook handles GET /api/v1/drafts/:id/export/xlsx
// @Summary Export a draft as an xlsx workbook
// @Description Render the draft's effective data as a workbook with box and customs summary sheets
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Draft ID"
// @Success 200 {string} string "Workbook file"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Router /drafts/{id}/export/xlsx [get]
func (h *DraftHandler) ExportWorkbook(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("draft_%s.xlsx", draftID)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.draftService.ExportWorkbook(c.Request.Context(), draftID, c.Writer); err != nil {
		HandleError(c, err)
	}
}

func parseDraftID(c *gin.Context) (uuid.UUID, bool) {
	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid draft ID")
		return uuid.Nil, false
	}
	return draftID, true
}

func parseDraftFilter(c *gin.Context) (port.DraftFilter, bool) {
	filter := port.DraftFilter{Limit: 50}

	if status := c.Query("status"); status != "" {
		ds := domain.DraftStatus(status)
		if !domain.ValidDraftStatuses[ds] {
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "invalid status filter")
			return filter, false
		}
		filter.Status = ds
	}
	if batchID := c.Query("batch_id"); batchID != "" {
		id, err := uuid.Parse(batchID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch_id filter")
			return filter, false
		}
		filter.BatchID = id
	}
	if offset := c.Query("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}
	return filter, true
}
