package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/internal/storage/s3"
)

// DraftFileUploadInput is the DTO for attaching a document to a draft.
type DraftFileUploadInput struct {
	DraftID uuid.UUID
	File    multipart.File
	Header  *multipart.FileHeader
}

// DraftFileService manages the supporting documents attached to a draft:
// the original invoice, packing list, or whatever else the operator wants
// kept alongside the record.
type DraftFileService interface {
	Attach(ctx context.Context, input DraftFileUploadInput) (*domain.DraftFile, error)
	Detach(ctx context.Context, draftID, fileID uuid.UUID) error
	DownloadURL(ctx context.Context, draftID, fileID uuid.UUID) (string, error)
	Open(ctx context.Context, draftID, fileID uuid.UUID) (*domain.DraftFile, []byte, error)
}

type draftFileService struct {
	drafts  port.DraftsService
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewDraftFileService creates a new DraftFileService implementation.
func NewDraftFileService(
	drafts port.DraftsService,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) DraftFileService {
	return &draftFileService{
		drafts:  drafts,
		storage: storage,
		cfg:     cfg,
	}
}

// Attach validates and uploads the document, then registers it on the draft.
// A registration failure removes the uploaded object so the bucket holds no
// orphans.
func (s *draftFileService) Attach(ctx context.Context, input DraftFileUploadInput) (*domain.DraftFile, error) {
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte content type detection; the client-supplied type is not
	// trusted.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	if !allowedUploadTypes[contentType] {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	fileID := uuid.New()
	key := s3.DraftFileKey(input.DraftID, fileID, input.Header.Filename)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	}); err != nil {
		log.Printf("draftFileService.Attach: uploading %s for draft %s failed: %v",
			input.Header.Filename, input.DraftID, err)
		return nil, fmt.Errorf("uploading file %s: %w", input.Header.Filename, err)
	}

	file := domain.DraftFile{
		ID:           fileID,
		OriginalName: input.Header.Filename,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        key,
		ContentType:  contentType,
		FileSize:     input.Header.Size,
	}

	if err := s.drafts.AttachFile(ctx, input.DraftID, file); err != nil {
		if delErr := s.storage.Delete(ctx, file.S3Bucket, file.S3Key); delErr != nil {
			log.Printf("draftFileService.Attach: orphan cleanup for %s failed: %v", key, delErr)
		}
		return nil, fmt.Errorf("registering file on draft %s: %w", input.DraftID, err)
	}

	log.Printf("draftFileService.Attach: file %s (%s, %d bytes) attached to draft %s",
		file.ID, contentType, file.FileSize, input.DraftID)
	return &file, nil
}

// Detach removes the document from the draft and deletes the stored object.
func (s *draftFileService) Detach(ctx context.Context, draftID, fileID uuid.UUID) error {
	file, err := s.find(ctx, draftID, fileID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.S3Bucket, file.S3Key); err != nil {
		log.Printf("draftFileService.Detach: deleting %s from storage failed: %v", file.S3Key, err)
		return fmt.Errorf("deleting file from storage: %w", err)
	}

	log.Printf("draftFileService.Detach: file %s detached from draft %s", fileID, draftID)
	return s.drafts.DetachFile(ctx, draftID, fileID)
}

// DownloadURL returns a time-limited link to the stored document.
func (s *draftFileService) DownloadURL(ctx context.Context, draftID, fileID uuid.UUID) (string, error) {
	file, err := s.find(ctx, draftID, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, file.S3Bucket, file.S3Key, s.cfg.PresignExpiry)
}

// Open fetches the document's bytes for serving through the backend, for
// clients that cannot follow a presigned bucket URL.
func (s *draftFileService) Open(ctx context.Context, draftID, fileID uuid.UUID) (*domain.DraftFile, []byte, error) {
	file, err := s.find(ctx, draftID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Download(ctx, file.S3Bucket, file.S3Key)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading file %s: %w", fileID, err)
	}
	return file, data, nil
}

// find resolves a file against the draft's attachment list.
func (s *draftFileService) find(ctx context.Context, draftID, fileID uuid.UUID) (*domain.DraftFile, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	for i := range draft.Files {
		if draft.Files[i].ID == fileID {
			return &draft.Files[i], nil
		}
	}
	return nil, domain.ErrFileNotFound
}
