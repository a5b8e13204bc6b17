package port

import (
	"context"

	"shipdraft/internal/domain"
)

// DutyLookup resolves duty rates for an import classification code between an
// origin and destination country.
type DutyLookup interface {
	Lookup(ctx context.Context, code, destinationCountry, originCountry string) (*domain.DutyRates, error)
}
