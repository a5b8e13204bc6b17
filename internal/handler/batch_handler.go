package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipdraft/internal/service"
)

// BatchHandler handles batch submission and progress endpoints.
type BatchHandler struct {
	batchService service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// Submit handles POST /api/v1/batches
// @Summary Submit a batch of documents
// @Description Stage uploaded documents and submit them to the extraction pipeline
// @Tags batches
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Documents to process (PDF, JPG, or PNG)"
// @Success 202 {object} Response{data=BatchSubmitResponse} "Batch accepted"
// @Failure 400 {object} ErrorResponseBody "No files or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 502 {object} ErrorResponseBody "Pipeline unavailable"
// @Router /batches [post]
func (h *BatchHandler) Submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "EMPTY_BATCH", "at least one file is required")
		return
	}

	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file "+header.Filename)
			return
		}
		files = append(files, f)
	}

	batchID, err := h.batchService.Submit(c.Request.Context(), service.BatchUploadInput{
		Files:   files,
		Headers: headers,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, gin.H{"batch_id": batchID, "file_count": len(headers)})
}

// Observe handles GET /api/v1/batches/:id/events
// @Summary Observe batch progress
// @Description Stream batch progress snapshots as server-sent events until the batch reaches a terminal step
// @Tags batches
// @Produce text/event-stream
// @Param id path string true "Batch ID"
// @Success 200 {string} string "SSE stream of progress snapshots"
// @Failure 400 {object} ErrorResponseBody "Invalid batch ID"
// @Router /batches/{id}/events [get]
func (h *BatchHandler) Observe(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return
	}

	snapshots, err := h.batchService.Observe(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		snap, ok := <-snapshots
		if !ok {
			return false
		}
		c.SSEvent("progress", snap)
		return !snap.Terminal()
	})
}

// Active handles GET /api/v1/batches/active
// @Summary List active batches
// @Description List batches the extraction pipeline is still processing
// @Tags batches
// @Produce json
// @Success 200 {object} Response{data=[]domain.Batch} "Active batches"
// @Failure 502 {object} ErrorResponseBody "Pipeline unavailable"
// @Router /batches/active [get]
func (h *BatchHandler) Active(c *gin.Context) {
	batches, err := h.batchService.ActiveBatches(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batches)
}
