package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shipdraft/internal/service"
)

// DraftFileHandler handles the documents attached to a draft.
type DraftFileHandler struct {
	fileService service.DraftFileService
}

// NewDraftFileHandler creates a new DraftFileHandler.
func NewDraftFileHandler(fileService service.DraftFileService) *DraftFileHandler {
	return &DraftFileHandler{fileService: fileService}
}

// Attach handles POST /api/v1/drafts/:id/files
// @Summary Attach a document to a draft
// @Description Upload a supporting document (PDF, JPG, PNG) and register it on the draft
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Draft ID"
// @Param file formData file true "Document to attach"
// @Success 201 {object} Response{data=domain.DraftFile} "File attached"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 404 {object} ErrorResponseBody "Draft not found"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /drafts/{id}/files [post]
func (h *DraftFileHandler) Attach(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	meta, err := h.fileService.Attach(c.Request.Context(), service.DraftFileUploadInput{
		DraftID: draftID,
		File:    file,
		Header:  header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, meta)
}

// Detach handles DELETE /api/v1/drafts/:id/files/:file_id
// @Summary Detach a document from a draft
// @Description Remove the document from the draft and delete the stored object
// @Tags files
// @Produce json
// @Param id path string true "Draft ID"
// @Param file_id path string true "File ID"
// @Success 200 {object} Response "File detached"
// @Failure 404 {object} ErrorResponseBody "Draft or file not found"
// @Router /drafts/{id}/files/{file_id} [delete]
func (h *DraftFileHandler) Detach(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	fileID, ok := parseFileID(c)
	if !ok {
		return
	}
	if err := h.fileService.Detach(c.Request.Context(), draftID, fileID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"detached": true})
}

// DownloadURL handles GET /api/v1/drafts/:id/files/:file_id/url
// @Summary Get a download link for an attached document
// @Description Return a time-limited presigned URL for the stored object
// @Tags files
// @Produce json
// @Param id path string true "Draft ID"
// @Param file_id path string true "File ID"
// @Success 200 {object} Response{data=FileURLResponse} "Presigned download URL"
// @Failure 404 {object} ErrorResponseBody "Draft or file not found"
// @Router /drafts/{id}/files/{file_id}/url [get]
func (h *DraftFileHandler) DownloadURL(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	fileID, ok := parseFileID(c)
	if !ok {
		return
	}
	url, err := h.fileService.DownloadURL(c.Request.Context(), draftID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"download_url": url})
}

// Download handles GET /api/v1/drafts/:id/files/:file_id/content
// @Summary Download an attached document
// @Description Stream the document's bytes through the backend
// @Tags files
// @Produce octet-stream
// @Param id path string true "Draft ID"
// @Param file_id path string true "File ID"
// @Success 200 {string} string "File contents"
// @Failure 404 {object} ErrorResponseBody "Draft or file not found"
// @Router /drafts/{id}/files/{file_id}/content [get]
func (h *DraftFileHandler) Download(c *gin.Context) {
	draftID, ok := parseDraftID(c)
	if !ok {
		return
	}
	fileID, ok := parseFileID(c)
	if !ok {
		return
	}
	meta, data, err := h.fileService.Open(c.Request.Context(), draftID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+meta.OriginalName+`"`)
	c.Data(http.StatusOK, meta.ContentType, data)
}

func parseFileID(c *gin.Context) (uuid.UUID, bool) {
	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return uuid.Nil, false
	}
	return fileID, true
}
