package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipdraft/internal/domain"
	"shipdraft/internal/handler"
	"shipdraft/internal/service"
	"shipdraft/mocks/servicemocks"
)

func newDraftFileHandler() (*handler.DraftFileHandler, *servicemocks.MockDraftFileService) {
	mockSvc := new(servicemocks.MockDraftFileService)
	h := handler.NewDraftFileHandler(mockSvc)
	return h, mockSvc
}

func fileParams(draftID, fileID uuid.UUID) gin.Params {
	return gin.Params{
		{Key: "id", Value: draftID.String()},
		{Key: "file_id", Value: fileID.String()},
	}
}

func TestDraftFileHandler_Attach_Success(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID := uuid.New()

	meta := &domain.DraftFile{ID: uuid.New(), OriginalName: "invoice.pdf", ContentType: "application/pdf"}
	mockSvc.On("Attach", mock.Anything, mock.MatchedBy(func(in service.DraftFileUploadInput) bool {
		return in.DraftID == draftID && in.Header.Filename == "invoice.pdf"
	})).Return(meta, nil)

	body, contentType := multipartBody(t, "file", map[string][]byte{
		"invoice.pdf": []byte("%PDF-1.7\n"),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/drafts/"+draftID.String()+"/files", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: draftID.String()}}

	h.Attach(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestDraftFileHandler_Attach_MissingFile(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID := uuid.New()

	body, contentType := multipartBody(t, "other_field", map[string][]byte{
		"invoice.pdf": []byte("%PDF-1.7\n"),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/drafts/"+draftID.String()+"/files", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: draftID.String()}}

	h.Attach(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
	mockSvc.AssertNotCalled(t, "Attach", mock.Anything, mock.Anything)
}

func TestDraftFileHandler_Detach_Success(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID, fileID := uuid.New(), uuid.New()

	mockSvc.On("Detach", mock.Anything, draftID, fileID).Return(nil)

	c, w := testContext(t, http.MethodDelete, "/api/v1/drafts/"+draftID.String()+"/files/"+fileID.String(), nil)
	c.Params = fileParams(draftID, fileID)
	h.Detach(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestDraftFileHandler_Detach_FileNotFound(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID, fileID := uuid.New(), uuid.New()

	mockSvc.On("Detach", mock.Anything, draftID, fileID).Return(domain.ErrFileNotFound)

	c, w := testContext(t, http.MethodDelete, "/api/v1/drafts/"+draftID.String()+"/files/"+fileID.String(), nil)
	c.Params = fileParams(draftID, fileID)
	h.Detach(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "FILE_NOT_FOUND", resp.Error.Code)
}

func TestDraftFileHandler_DownloadURL(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID, fileID := uuid.New(), uuid.New()

	mockSvc.On("DownloadURL", mock.Anything, draftID, fileID).Return("https://example.com/signed", nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/drafts/"+draftID.String()+"/files/"+fileID.String()+"/url", nil)
	c.Params = fileParams(draftID, fileID)
	h.DownloadURL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/signed", data["download_url"])
}

func TestDraftFileHandler_Download_StreamsContent(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID, fileID := uuid.New(), uuid.New()

	meta := &domain.DraftFile{ID: fileID, OriginalName: "invoice.pdf", ContentType: "application/pdf"}
	mockSvc.On("Open", mock.Anything, draftID, fileID).Return(meta, []byte("%PDF-1.7\n"), nil)

	c, w := testContext(t, http.MethodGet, "/api/v1/drafts/"+draftID.String()+"/files/"+fileID.String()+"/content", nil)
	c.Params = fileParams(draftID, fileID)
	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice.pdf")
	assert.Equal(t, "%PDF-1.7\n", w.Body.String())
}

func TestDraftFileHandler_InvalidFileID(t *testing.T) {
	h, mockSvc := newDraftFileHandler()
	draftID := uuid.New()

	c, w := testContext(t, http.MethodDelete, "/api/v1/drafts/"+draftID.String()+"/files/not-a-uuid", nil)
	c.Params = gin.Params{
		{Key: "id", Value: draftID.String()},
		{Key: "file_id", Value: "not-a-uuid"},
	}
	h.Detach(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
	mockSvc.AssertNotCalled(t, "Detach", mock.Anything, mock.Anything, mock.Anything)
}
