package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/mocks"
)

func fileUploadInput(draftID uuid.UUID, name string, content []byte) DraftFileUploadInput {
	return DraftFileUploadInput{
		DraftID: draftID,
		File:    fakeUpload{bytes.NewReader(content)},
		Header:  &multipart.FileHeader{Filename: name, Size: int64(len(content))},
	}
}

func fileTestConfig() *config.S3Config {
	return &config.S3Config{Bucket: "shipdraft-staging", MaxFileSizeMB: 1, PresignExpiry: 900}
}

func attachedDraft(draftID, fileID uuid.UUID) *domain.Draft {
	return &domain.Draft{
		ID: draftID,
		Files: []domain.DraftFile{{
			ID:           fileID,
			OriginalName: "invoice.pdf",
			S3Bucket:     "shipdraft-staging",
			S3Key:        "drafts/" + draftID.String() + "/files/" + fileID.String() + "/invoice.pdf",
			ContentType:  "application/pdf",
			FileSize:     42,
		}},
	}
}

func TestDraftFileService_Attach(t *testing.T) {
	draftID := uuid.New()

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "shipdraft-staging" &&
			in.ContentType == "application/pdf" &&
			strings.HasPrefix(in.Key, "drafts/"+draftID.String()+"/files/") &&
			strings.HasSuffix(in.Key, "/invoice.pdf")
	})).Return(&port.UploadOutput{}, nil)

	drafts := new(mocks.MockDraftsService)
	drafts.On("AttachFile", mock.Anything, draftID, mock.MatchedBy(func(f domain.DraftFile) bool {
		return f.OriginalName == "invoice.pdf" && f.S3Bucket == "shipdraft-staging" && f.ContentType == "application/pdf"
	})).Return(nil)

	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	file, err := svc.Attach(context.Background(), fileUploadInput(draftID, "invoice.pdf", pdfBytes))

	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", file.OriginalName)
	assert.Equal(t, int64(len(pdfBytes)), file.FileSize)
	storage.AssertExpectations(t)
	drafts.AssertExpectations(t)
}

func TestDraftFileService_Attach_RejectsUnsupportedType(t *testing.T) {
	svc := NewDraftFileService(new(mocks.MockDraftsService), new(mocks.MockObjectStorage), fileTestConfig())

	_, err := svc.Attach(context.Background(), fileUploadInput(uuid.New(), "notes.pdf", []byte("just some plain text")))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestDraftFileService_Attach_CleansUpOnRegistrationFailure(t *testing.T) {
	// A draft the service refuses to know about must not leave an orphan
	// object in the bucket.
	draftID := uuid.New()

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	storage.On("Delete", mock.Anything, "shipdraft-staging", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "drafts/"+draftID.String()+"/files/")
	})).Return(nil)

	drafts := new(mocks.MockDraftsService)
	drafts.On("AttachFile", mock.Anything, draftID, mock.Anything).Return(domain.ErrDraftNotFound)

	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	_, err := svc.Attach(context.Background(), fileUploadInput(draftID, "invoice.pdf", pdfBytes))

	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	storage.AssertExpectations(t)
}

func TestDraftFileService_Detach(t *testing.T) {
	draftID, fileID := uuid.New(), uuid.New()
	draft := attachedDraft(draftID, fileID)

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draftID).Return(draft, nil)
	drafts.On("DetachFile", mock.Anything, draftID, fileID).Return(nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Delete", mock.Anything, "shipdraft-staging", draft.Files[0].S3Key).Return(nil)

	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	require.NoError(t, svc.Detach(context.Background(), draftID, fileID))
	drafts.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestDraftFileService_Detach_UnknownFile(t *testing.T) {
	draftID := uuid.New()

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draftID).Return(&domain.Draft{ID: draftID}, nil)

	storage := new(mocks.MockObjectStorage)
	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	err := svc.Detach(context.Background(), draftID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftFileService_DownloadURL(t *testing.T) {
	draftID, fileID := uuid.New(), uuid.New()
	draft := attachedDraft(draftID, fileID)

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draftID).Return(draft, nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("GetPresignedURL", mock.Anything, "shipdraft-staging", draft.Files[0].S3Key, int64(900)).
		Return("https://example.com/signed", nil)

	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	url, err := svc.DownloadURL(context.Background(), draftID, fileID)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/signed", url)
	storage.AssertExpectations(t)
}

func TestDraftFileService_Open(t *testing.T) {
	draftID, fileID := uuid.New(), uuid.New()
	draft := attachedDraft(draftID, fileID)

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draftID).Return(draft, nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "shipdraft-staging", draft.Files[0].S3Key).Return(pdfBytes, nil)

	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	meta, data, err := svc.Open(context.Background(), draftID, fileID)

	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", meta.OriginalName)
	assert.Equal(t, pdfBytes, data)
}

func TestDraftFileService_Open_DownloadError(t *testing.T) {
	draftID, fileID := uuid.New(), uuid.New()

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draftID).Return(attachedDraft(draftID, fileID), nil)

	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied"))

	svc := NewDraftFileService(drafts, storage, fileTestConfig())

	_, _, err := svc.Open(context.Background(), draftID, fileID)

	assert.ErrorContains(t, err, "access denied")
}
