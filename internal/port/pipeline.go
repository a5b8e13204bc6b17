package port

import (
	"context"

	"github.com/google/uuid"

	"shipdraft/internal/domain"
)

// StagedFile references an uploaded file already staged in object storage.
type StagedFile struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ExtractionPipeline is the external service that turns uploaded documents
// into draft shipments.
//
// Events returns a push channel of progress snapshots. The channel closes
// when the transport drops; a close without a preceding terminal snapshot is
// a channel-level failure, not a pipeline error. Semantic pipeline failures
// arrive as snapshots with step "error".
type ExtractionPipeline interface {
	Submit(ctx context.Context, files []StagedFile) (uuid.UUID, error)
	Events(ctx context.Context, batchID uuid.UUID) (<-chan domain.BatchSnapshot, error)
	ActiveBatches(ctx context.Context) ([]domain.Batch, error)
}
