package port

import (
	"context"

	"github.com/google/uuid"
)

// BatchNotifier notifies operators about terminal batch outcomes.
type BatchNotifier interface {
	NotifyBatchComplete(ctx context.Context, batchID uuid.UUID, shipmentsFound int) error
	NotifyBatchFailed(ctx context.Context, batchID uuid.UUID, reason string) error
}
