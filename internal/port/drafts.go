package port

import (
	"context"

	"github.com/google/uuid"

	"shipdraft/internal/domain"
)

// DraftFilter narrows a draft listing.
type DraftFilter struct {
	Status  domain.DraftStatus
	BatchID uuid.UUID
	Offset  int
	Limit   int
}

// DraftsService is the external service that persists drafts. A correction
// batch is applied atomically: the whole patch succeeds or the whole patch is
// rejected, and the returned draft is the new effective state.
type DraftsService interface {
	List(ctx context.Context, filter DraftFilter) ([]domain.Draft, int, error)
	Get(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error)
	ApplyCorrections(ctx context.Context, draftID uuid.UUID, revision int64, patch []domain.Correction) (*domain.Draft, error)
	UpdateStatus(ctx context.Context, draftID uuid.UUID, status domain.DraftStatus) error
	Delete(ctx context.Context, draftID uuid.UUID) error
	AttachFile(ctx context.Context, draftID uuid.UUID, file domain.DraftFile) error
	DetachFile(ctx context.Context, draftID, fileID uuid.UUID) error
}
