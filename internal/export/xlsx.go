package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"shipdraft/internal/domain"
	"shipdraft/internal/xindus"
)

const (
	sheetBoxes   = "Boxes"
	sheetSummary = "Customs Summary"
)

var boxHeader = []interface{}{
	"Box #", "Length (cm)", "Width (cm)", "Height (cm)", "Weight (kg)",
	"Receiver Name", "Receiver Street", "Receiver City", "Receiver State",
	"Receiver Postal Code", "Receiver Country",
	"Item Description", "HSN", "Import HSN", "Quantity", "Unit Price", "Unit FOB",
}

var summaryHeader = []interface{}{
	"Description", "HSN", "Import HSN", "Quantity", "Total Value",
	"Duty Rate", "Country of Origin",
}

// WriteWorkbook renders one draft's effective data as an xlsx workbook with a
// per-item box sheet and a deduplicated customs summary sheet.
func WriteWorkbook(w io.Writer, draft *domain.Draft) error {
	data := draft.Effective()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetBoxes)
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	if err := writeRow(f, sheetBoxes, 1, boxHeader); err != nil {
		return err
	}
	row := 2
	for bi, box := range data.Boxes {
		for _, item := range box.Items {
			cells := []interface{}{
				bi + 1, box.LengthCM, box.WidthCM, box.HeightCM, box.WeightKG,
				box.ReceiverAddress.Name, box.ReceiverAddress.Street,
				box.ReceiverAddress.City, box.ReceiverAddress.State,
				box.ReceiverAddress.PostalCode, box.ReceiverAddress.Country,
				item.Description, item.HSN, item.IHSN, item.Quantity,
				item.UnitPrice, item.EffectiveFOB(),
			}
			if err := writeRow(f, sheetBoxes, row, cells); err != nil {
				return err
			}
			row++
		}
	}

	if err := writeRow(f, sheetSummary, 1, summaryHeader); err != nil {
		return err
	}
	for i, product := range xindus.DeriveProductSummary(data.Boxes) {
		cells := []interface{}{
			product.Description, product.HSN, product.IHSN,
			product.Quantity, product.TotalValue,
			product.DutyRate, product.CountryOfOrigin,
		}
		if err := writeRow(f, sheetSummary, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolving cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d on %s: %w", row, sheet, err)
	}
	return nil
}
