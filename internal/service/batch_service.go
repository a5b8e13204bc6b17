package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/internal/storage/s3"
	"shipdraft/internal/tracker"
)

// allowedUploadTypes maps accepted upload content types.
var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// BatchUploadInput is the DTO for a batch submission request.
type BatchUploadInput struct {
	Files   []multipart.File
	Headers []*multipart.FileHeader
}

// BatchService defines the batch submission and tracking contract.
type BatchService interface {
	Submit(ctx context.Context, input BatchUploadInput) (uuid.UUID, error)
	Observe(ctx context.Context, batchID uuid.UUID) (<-chan domain.BatchSnapshot, error)
	ActiveBatches(ctx context.Context) ([]domain.Batch, error)
}

type batchService struct {
	storage    port.ObjectStorage
	pipeline   port.ExtractionPipeline
	notifier   port.BatchNotifier
	s3Cfg      *config.S3Config
	trackerCfg tracker.Config

	mu       sync.Mutex
	trackers map[uuid.UUID]*tracker.Tracker
	// staging remembers which upload staged a batch's files, so they can be
	// cleaned out of the bucket once the batch finishes.
	staging map[uuid.UUID]uuid.UUID
}

// NewBatchService creates a new BatchService implementation.
func NewBatchService(
	storage port.ObjectStorage,
	pipeline port.ExtractionPipeline,
	notifier port.BatchNotifier,
	s3Cfg *config.S3Config,
	trackerCfg *config.TrackerConfig,
) BatchService {
	return &batchService{
		storage:  storage,
		pipeline: pipeline,
		notifier: notifier,
		s3Cfg:    s3Cfg,
		trackerCfg: tracker.Config{
			PollInterval:    time.Duration(trackerCfg.PollIntervalSecs) * time.Second,
			BackoffCap:      time.Duration(trackerCfg.BackoffCapSecs) * time.Second,
			MaxPollFailures: trackerCfg.MaxPollFailures,
		},
		trackers: make(map[uuid.UUID]*tracker.Tracker),
		staging:  make(map[uuid.UUID]uuid.UUID),
	}
}

// Submit stages the uploaded files in object storage, hands them to the
// extraction pipeline, and registers a tracker for the new batch.
func (s *batchService) Submit(ctx context.Context, input BatchUploadInput) (uuid.UUID, error) {
	if len(input.Files) == 0 {
		return uuid.Nil, domain.ErrEmptyBatch
	}

	uploadID := uuid.New()
	maxBytes := s.s3Cfg.MaxFileSizeMB * 1024 * 1024

	staged := make([]port.StagedFile, 0, len(input.Files))
	for i, file := range input.Files {
		header := input.Headers[i]
		if header.Size > maxBytes {
			return uuid.Nil, domain.ErrFileTooLarge
		}

		// Magic-byte content type detection; the client-supplied type is
		// not trusted.
		buf := make([]byte, 512)
		n, err := file.Read(buf)
		if err != nil && err != io.EOF {
			return uuid.Nil, fmt.Errorf("reading file header: %w", err)
		}
		contentType := http.DetectContentType(buf[:n])
		if !allowedUploadTypes[contentType] {
			return uuid.Nil, domain.ErrUnsupportedFileType
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return uuid.Nil, fmt.Errorf("seeking file: %w", err)
		}

		key := s3.StagingKey(uploadID, header.Filename)
		if _, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.s3Cfg.Bucket,
			Key:         key,
			Body:        file,
			ContentType: contentType,
			Size:        header.Size,
		}); err != nil {
			log.Printf("batchService.Submit: staging %s failed: %v", header.Filename, err)
			return uuid.Nil, fmt.Errorf("staging file %s: %w", header.Filename, err)
		}

		staged = append(staged, port.StagedFile{
			Bucket:      s.s3Cfg.Bucket,
			Key:         key,
			Name:        header.Filename,
			ContentType: contentType,
			Size:        header.Size,
		})
	}

	batchID, err := s.pipeline.Submit(ctx, staged)
	if err != nil {
		log.Printf("batchService.Submit: pipeline submission failed: %v", err)
		return uuid.Nil, fmt.Errorf("submitting batch: %w", domain.ErrPipelineUnavailable)
	}

	log.Printf("batchService.Submit: batch %s submitted with %d file(s)", batchID, len(staged))
	s.mu.Lock()
	s.staging[batchID] = uploadID
	s.mu.Unlock()
	s.trackerFor(batchID)
	return batchID, nil
}

// Observe attaches to the batch's tracker. Re-observing an in-flight batch
// cancels the previous observation; observing a finished batch replays its
// terminal snapshot.
func (s *batchService) Observe(ctx context.Context, batchID uuid.UUID) (<-chan domain.BatchSnapshot, error) {
	if batchID == uuid.Nil {
		return nil, domain.ErrBatchNotFound
	}
	return s.trackerFor(batchID).Observe(ctx), nil
}

func (s *batchService) ActiveBatches(ctx context.Context) ([]domain.Batch, error) {
	return s.pipeline.ActiveBatches(ctx)
}

// trackerFor returns the tracker registered for the batch, creating one on
// first use. Resumed observation after a restart lands here too: the fresh
// tracker reconciles against the pipeline's persisted batch state.
func (s *batchService) trackerFor(batchID uuid.UUID) *tracker.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.trackers[batchID]; ok {
		return t
	}
	t := tracker.New(batchID, s.pipeline, s.trackerCfg,
		tracker.WithTerminalFunc(s.onTerminal))
	s.trackers[batchID] = t
	return t
}

// onTerminal fires once per batch, on the first terminal snapshot.
func (s *batchService) onTerminal(snap domain.BatchSnapshot) {
	log.Printf("batchService.onTerminal: batch %s finished (step=%s shipments=%d inferred=%t)",
		snap.BatchID, snap.Step, snap.ShipmentsFound, snap.Inferred)

	s.mu.Lock()
	uploadID, hasStaging := s.staging[snap.BatchID]
	delete(s.staging, snap.BatchID)
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if hasStaging {
			if err := s.storage.DeletePrefix(ctx, s.s3Cfg.Bucket, s3.StagingPrefix(uploadID)); err != nil {
				log.Printf("batchService.onTerminal: staging cleanup for batch %s failed: %v", snap.BatchID, err)
			}
		}

		var err error
		if snap.Step == domain.BatchStepError {
			err = s.notifier.NotifyBatchFailed(ctx, snap.BatchID, snap.ErrorMessage)
		} else {
			err = s.notifier.NotifyBatchComplete(ctx, snap.BatchID, snap.ShipmentsFound)
		}
		if err != nil {
			log.Printf("batchService.onTerminal: notification for batch %s failed: %v", snap.BatchID, err)
		}
	}()
}
