package propagate

import (
	"reflect"

	"shipdraft/internal/domain"
)

// ProductPatch holds the changed subset of product fields from an edit. Nil
// fields were not touched and must not be merged into matching items.
type ProductPatch struct {
	Description     *string
	HSN             *string
	IHSN            *string
	DutyRate        *float64
	BaseDutyRate    *float64
	TaxPercent      *float64
	TariffScenarios *[]string
	CountryOfOrigin *string
	UnitPrice       *float64
	AIClassified    *bool
	ConfidenceTier  *string
}

// Empty reports whether the patch carries no changes.
func (p *ProductPatch) Empty() bool {
	return p.Description == nil && p.HSN == nil && p.IHSN == nil &&
		p.DutyRate == nil && p.BaseDutyRate == nil && p.TaxPercent == nil &&
		p.TariffScenarios == nil && p.CountryOfOrigin == nil &&
		p.UnitPrice == nil && p.AIClassified == nil && p.ConfidenceTier == nil
}

// ImportCodeChanged reports whether the edit changed the import
// classification code, which triggers an external duty lookup.
func (p *ProductPatch) ImportCodeChanged() bool {
	return p.IHSN != nil
}

// DiffProduct computes the changed-field patch between the pre-edit and
// post-edit versions of a product row.
func DiffProduct(old, updated domain.ProductDetail) ProductPatch {
	var p ProductPatch
	if old.Description != updated.Description {
		p.Description = &updated.Description
	}
	if old.HSN != updated.HSN {
		p.HSN = &updated.HSN
	}
	if old.IHSN != updated.IHSN {
		p.IHSN = &updated.IHSN
	}
	if old.DutyRate != updated.DutyRate {
		p.DutyRate = &updated.DutyRate
	}
	if old.BaseDutyRate != updated.BaseDutyRate {
		p.BaseDutyRate = &updated.BaseDutyRate
	}
	if old.TaxPercent != updated.TaxPercent {
		p.TaxPercent = &updated.TaxPercent
	}
	if !reflect.DeepEqual(old.TariffScenarios, updated.TariffScenarios) {
		scenarios := append([]string(nil), updated.TariffScenarios...)
		p.TariffScenarios = &scenarios
	}
	if old.CountryOfOrigin != updated.CountryOfOrigin {
		p.CountryOfOrigin = &updated.CountryOfOrigin
	}
	if old.UnitPrice != updated.UnitPrice {
		p.UnitPrice = &updated.UnitPrice
	}
	if old.AIClassified != updated.AIClassified {
		p.AIClassified = &updated.AIClassified
	}
	if old.ConfidenceTier != updated.ConfidenceTier {
		p.ConfidenceTier = &updated.ConfidenceTier
	}
	return p
}

// Product merges an edited product into every box item whose description
// matches the pre-edit product's description (trimmed, case-insensitive).
// Item-specific fields (quantity, weight, remarks) are left untouched. The
// returned boxes are a deep copy; matched is the number of items updated.
func Product(old, updated domain.ProductDetail, boxes []domain.ShipmentBox) (patched []domain.ShipmentBox, patch ProductPatch, matched int) {
	patch = DiffProduct(old, updated)
	patched = domain.CloneBoxes(boxes)
	if patch.Empty() {
		return patched, patch, 0
	}

	matchKey := domain.NormalizeDescription(old.Description)
	for i := range patched {
		for j := range patched[i].Items {
			item := &patched[i].Items[j]
			if domain.NormalizeDescription(item.Description) != matchKey {
				continue
			}
			applyPatch(item, &patch)
			matched++
		}
	}
	return patched, patch, matched
}

func applyPatch(item *domain.ShipmentBoxItem, p *ProductPatch) {
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.HSN != nil {
		item.HSN = *p.HSN
	}
	if p.IHSN != nil {
		item.IHSN = *p.IHSN
	}
	if p.DutyRate != nil {
		item.DutyRate = *p.DutyRate
	}
	if p.BaseDutyRate != nil {
		item.BaseDutyRate = *p.BaseDutyRate
	}
	if p.TaxPercent != nil {
		item.TaxPercent = *p.TaxPercent
	}
	if p.TariffScenarios != nil {
		item.TariffScenarios = append([]string(nil), *p.TariffScenarios...)
	}
	if p.CountryOfOrigin != nil {
		item.CountryOfOrigin = *p.CountryOfOrigin
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.AIClassified != nil {
		item.AIClassified = *p.AIClassified
	}
	if p.ConfidenceTier != nil {
		item.ConfidenceTier = *p.ConfidenceTier
	}
}

// ApplyDutyRates runs the second propagation pass after a duty lookup
// resolves: the returned rates are merged into the product row and into every
// box item matching the product's description. Absolute values only, so a
// repeated pass is a no-op.
func ApplyDutyRates(product domain.ProductDetail, boxes []domain.ShipmentBox, rates domain.DutyRates) (domain.ProductDetail, []domain.ShipmentBox) {
	product.DutyRate = rates.DutyRate
	product.BaseDutyRate = rates.BaseDutyRate
	product.TariffScenarios = append([]string(nil), rates.TariffScenarios...)

	out := domain.CloneBoxes(boxes)
	matchKey := domain.NormalizeDescription(product.Description)
	for i := range out {
		for j := range out[i].Items {
			item := &out[i].Items[j]
			if domain.NormalizeDescription(item.Description) != matchKey {
				continue
			}
			item.DutyRate = rates.DutyRate
			item.BaseDutyRate = rates.BaseDutyRate
			item.TariffScenarios = append([]string(nil), rates.TariffScenarios...)
		}
	}
	return product, out
}
