package noop

import (
	"context"
	"log"

	"github.com/google/uuid"

	"shipdraft/internal/port"
)

type noopNotifier struct {
	consoleURL string
}

// NewNoopNotifier creates a no-op BatchNotifier that logs outcomes to stdout.
func NewNoopNotifier(consoleURL string) port.BatchNotifier {
	return &noopNotifier{consoleURL: consoleURL}
}

func (n *noopNotifier) NotifyBatchComplete(_ context.Context, batchID uuid.UUID, shipmentsFound int) error {
	log.Printf("[NOOP EMAIL] Batch %s complete: %d shipment(s) ready at %s/batches/%s",
		batchID, shipmentsFound, n.consoleURL, batchID)
	return nil
}

func (n *noopNotifier) NotifyBatchFailed(_ context.Context, batchID uuid.UUID, reason string) error {
	log.Printf("[NOOP EMAIL] Batch %s failed: %s (details at %s/batches/%s)",
		batchID, reason, n.consoleURL, batchID)
	return nil
}
