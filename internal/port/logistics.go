package port

import (
	"context"

	"shipdraft/internal/xindus"
)

// LogisticsGateway forwards a translated payload to the downstream logistics
// platform and returns the platform's shipment identifier.
type LogisticsGateway interface {
	CreateShipment(ctx context.Context, payload *xindus.Payload) (string, error)
}
