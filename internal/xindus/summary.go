package xindus

import "shipdraft/internal/domain"

// DeriveProductSummary deduplicates box items into customs-declaration rows
// keyed by normalized description plus separator-stripped export code.
// Quantities and values accumulate across duplicates; descriptive fields come
// from the first occurrence.
func DeriveProductSummary(boxes []domain.ShipmentBox) []domain.ProductDetail {
	var rows []domain.ProductDetail
	index := map[string]int{}

	for i := range boxes {
		for j := range boxes[i].Items {
			item := &boxes[i].Items[j]
			key := domain.NormalizeDescription(item.Description) + "|" + StripCode(item.HSN)
			if at, ok := index[key]; ok {
				rows[at].Quantity += item.Quantity
				rows[at].TotalValue += float64(item.Quantity) * item.EffectiveFOB()
				continue
			}
			index[key] = len(rows)
			rows = append(rows, domain.ProductDetail{
				Description:     item.Description,
				HSN:             item.HSN,
				IHSN:            item.IHSN,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				TotalValue:      float64(item.Quantity) * item.EffectiveFOB(),
				DutyRate:        item.DutyRate,
				BaseDutyRate:    item.BaseDutyRate,
				TaxPercent:      item.TaxPercent,
				TariffScenarios: append([]string(nil), item.TariffScenarios...),
				CountryOfOrigin: item.CountryOfOrigin,
				AIClassified:    item.AIClassified,
				ConfidenceTier:  item.ConfidenceTier,
			})
		}
	}

	return rows
}
