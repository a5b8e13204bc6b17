// Package export renders shipment drafts into spreadsheet formats for
// offline review and customs paperwork.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"shipdraft/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (one row per box item).
var columns = []string{
	"Draft ID",
	"Status",
	"Invoice Number",
	"Invoice Date",
	"Currency",
	"Clearance Type",
	"Destination Country",
	"Addressing Mode",
	"Shipper Name",
	"Box #",
	"Box Dimensions (cm)",
	"Box Weight (kg)",
	"Receiver Name",
	"Receiver City",
	"Receiver Postal Code",
	"Receiver Country",
	"Item Description",
	"HSN",
	"Import HSN",
	"Quantity",
	"Unit Price",
	"Unit FOB",
	"Duty Rate",
	"Country of Origin",
	"Created At",
}

// Writer wraps csv.Writer for exporting drafts as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteDrafts flattens each draft's effective data into per-item rows and
// writes them. A draft with no boxes produces a single row with the shipment
// columns filled and the box/item columns empty.
func (w *Writer) WriteDrafts(drafts []domain.Draft) error {
	for i := range drafts {
		for _, row := range draftToRows(&drafts[i]) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func draftToRows(draft *domain.Draft) [][]string {
	data := draft.Effective()

	base := make([]string, len(columns))
	base[0] = draft.ID.String()
	base[1] = string(draft.Status)
	base[2] = data.InvoiceNumber
	base[3] = data.InvoiceDate
	base[4] = data.Currency
	base[5] = string(data.ClearanceType)
	base[6] = data.DestinationCountry
	base[7] = string(data.AddressingMode)
	base[8] = data.ShipperAddress.Name
	base[24] = draft.CreatedAt.Format(time.RFC3339)

	if len(data.Boxes) == 0 {
		return [][]string{base}
	}

	var rows [][]string
	for bi, box := range data.Boxes {
		boxCols := make([]string, len(columns))
		copy(boxCols, base)
		boxCols[9] = strconv.Itoa(bi + 1)
		boxCols[10] = fmt.Sprintf("%sx%sx%s",
			formatFloat(box.LengthCM), formatFloat(box.WidthCM), formatFloat(box.HeightCM))
		boxCols[11] = formatFloat(box.WeightKG)
		boxCols[12] = box.ReceiverAddress.Name
		boxCols[13] = box.ReceiverAddress.City
		boxCols[14] = box.ReceiverAddress.PostalCode
		boxCols[15] = box.ReceiverAddress.Country

		if len(box.Items) == 0 {
			rows = append(rows, boxCols)
			continue
		}
		for _, item := range box.Items {
			row := make([]string, len(columns))
			copy(row, boxCols)
			row[16] = item.Description
			row[17] = item.HSN
			row[18] = item.IHSN
			row[19] = strconv.Itoa(item.Quantity)
			row[20] = formatFloat(item.UnitPrice)
			row[21] = formatFloat(item.EffectiveFOB())
			row[22] = formatFloat(item.DutyRate)
			row[23] = item.CountryOfOrigin
			rows = append(rows, row)
		}
	}
	return rows
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
