package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentAddress is a flat postal address as extracted from shipment documents.
type ShipmentAddress struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	District    string `json:"district,omitempty"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	ContactName string `json:"contact_name,omitempty"`
	WarehouseID string `json:"warehouse_id,omitempty"`
}

// ShipmentBoxItem is a single line item packed in a box.
type ShipmentBoxItem struct {
	Description     string   `json:"description"`
	HSN             string   `json:"hsn"`  // export classification code
	IHSN            string   `json:"ihsn"` // import classification code
	Quantity        int      `json:"quantity"`
	UnitPrice       float64  `json:"unit_price"`
	UnitFOB         float64  `json:"unit_fob,omitempty"`
	UnitWeight      float64  `json:"unit_weight,omitempty"`
	DutyRate        float64  `json:"duty_rate,omitempty"`
	BaseDutyRate    float64  `json:"base_duty_rate,omitempty"`
	TaxPercent      float64  `json:"tax_percent,omitempty"`
	TariffScenarios []string `json:"tariff_scenarios,omitempty"`
	CountryOfOrigin string   `json:"country_of_origin,omitempty"`
	Remarks         string   `json:"remarks,omitempty"`
	AIClassified    bool     `json:"ai_classified,omitempty"`
	ConfidenceTier  string   `json:"confidence_tier,omitempty"`
}

// EffectiveFOB returns the declared unit FOB value, falling back to unit price.
func (i *ShipmentBoxItem) EffectiveFOB() float64 {
	if i.UnitFOB > 0 {
		return i.UnitFOB
	}
	return i.UnitPrice
}

// ShipmentBox is one physical box with its receiver address and contents.
type ShipmentBox struct {
	LengthCM        float64           `json:"length_cm"`
	WidthCM         float64           `json:"width_cm"`
	HeightCM        float64           `json:"height_cm"`
	WeightKG        float64           `json:"weight_kg"`
	ReceiverAddress ShipmentAddress   `json:"receiver_address"`
	Items           []ShipmentBoxItem `json:"items"`
}

// ProductDetail is a deduplicated customs-declaration summary row. Rows are
// independent of box items but matched back to them by description during
// propagation.
type ProductDetail struct {
	Description     string   `json:"description"`
	HSN             string   `json:"hsn"`
	IHSN            string   `json:"ihsn"`
	Quantity        int      `json:"quantity,omitempty"`
	UnitPrice       float64  `json:"unit_price,omitempty"`
	TotalValue      float64  `json:"total_value,omitempty"`
	DutyRate        float64  `json:"duty_rate,omitempty"`
	BaseDutyRate    float64  `json:"base_duty_rate,omitempty"`
	TaxPercent      float64  `json:"tax_percent,omitempty"`
	TariffScenarios []string `json:"tariff_scenarios,omitempty"`
	CountryOfOrigin string   `json:"country_of_origin,omitempty"`
	AIClassified    bool     `json:"ai_classified,omitempty"`
	ConfidenceTier  string   `json:"confidence_tier,omitempty"`
}

// Shipment is the structured shipment record extracted from uploaded documents.
type Shipment struct {
	InvoiceNumber      string          `json:"invoice_number"`
	InvoiceDate        string          `json:"invoice_date"`
	Currency           string          `json:"currency,omitempty"`
	ClearanceType      ClearanceType   `json:"clearance_type"`
	DestinationCountry string          `json:"destination_country"`
	AddressingMode     AddressingMode  `json:"addressing_mode"`
	ShipperAddress     ShipmentAddress `json:"shipper_address"`
	BillingAddress     ShipmentAddress `json:"billing_address"`
	Boxes              []ShipmentBox   `json:"shipment_boxes"`
	Products           []ProductDetail `json:"product_details"`
	Remarks            string          `json:"remarks,omitempty"`
}

// Clone returns a deep copy of the shipment. Corrections are staged against a
// working copy so the canonical record stays untouched until the server
// confirms a flush.
func (s *Shipment) Clone() *Shipment {
	out := *s
	out.Boxes = CloneBoxes(s.Boxes)
	out.Products = CloneProducts(s.Products)
	return &out
}

// CloneBoxes deep-copies a box list including items and tariff scenarios.
func CloneBoxes(boxes []ShipmentBox) []ShipmentBox {
	if boxes == nil {
		return nil
	}
	out := make([]ShipmentBox, len(boxes))
	for i := range boxes {
		out[i] = boxes[i]
		out[i].Items = make([]ShipmentBoxItem, len(boxes[i].Items))
		for j := range boxes[i].Items {
			out[i].Items[j] = boxes[i].Items[j]
			out[i].Items[j].TariffScenarios = append([]string(nil), boxes[i].Items[j].TariffScenarios...)
		}
	}
	return out
}

// CloneProducts deep-copies a product summary list.
func CloneProducts(products []ProductDetail) []ProductDetail {
	if products == nil {
		return nil
	}
	out := make([]ProductDetail, len(products))
	for i := range products {
		out[i] = products[i]
		out[i].TariffScenarios = append([]string(nil), products[i].TariffScenarios...)
	}
	return out
}

// SellerProfile is an optional linked seller record on a draft.
type SellerProfile struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email,omitempty"`
	Address ShipmentAddress `json:"address"`
}

// DraftFile is a document attached to a draft.
type DraftFile struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	S3Bucket     string    `json:"s3_bucket"`
	S3Key        string    `json:"s3_key"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
}

// Draft is one candidate shipment record awaiting review and approval.
// CanonicalData is the record as last produced or saved by the pipeline;
// CorrectedData, once present, is a full overlay produced by applying
// correction patches. CanonicalData is never mutated directly.
type Draft struct {
	ID               uuid.UUID          `json:"id"`
	Status           DraftStatus        `json:"status"`
	Revision         int64              `json:"revision"`
	CanonicalData    Shipment           `json:"canonical_data"`
	CorrectedData    *Shipment          `json:"corrected_data,omitempty"`
	ConfidenceScores map[string]float64 `json:"confidence_scores,omitempty"`
	Files            []DraftFile        `json:"files,omitempty"`
	Seller           *SellerProfile     `json:"seller,omitempty"`
	BatchID          uuid.UUID          `json:"batch_id"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Effective returns the correction overlay when present, else the canonical data.
func (d *Draft) Effective() *Shipment {
	if d.CorrectedData != nil {
		return d.CorrectedData
	}
	return &d.CanonicalData
}

// Correction is a single field-level edit staged against a draft's effective
// data. OldValue records the value the edit was computed against.
type Correction struct {
	FieldPath string      `json:"field_path"`
	OldValue  interface{} `json:"old_value"`
	NewValue  interface{} `json:"new_value"`
}

// StepProgress is the persisted progress of a batch's current pipeline step.
type StepProgress struct {
	Completed      int    `json:"completed"`
	Total          int    `json:"total"`
	File           string `json:"file,omitempty"`
	ShipmentsFound int    `json:"shipments_found,omitempty"`
}

// Batch is one background processing run over an uploaded set of files,
// as reported by the active-batches query.
type Batch struct {
	ID           uuid.UUID    `json:"id"`
	FileCount    int          `json:"file_count"`
	CurrentStep  BatchStep    `json:"current_step"`
	StepProgress StepProgress `json:"step_progress"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// BatchSnapshot is one progress report delivered to an observer. Inferred is
// set when the snapshot was synthesized locally (disappeared-batch policy or
// stalled polling) rather than reported by the pipeline.
type BatchSnapshot struct {
	BatchID        uuid.UUID `json:"batch_id"`
	Step           BatchStep `json:"step"`
	Completed      int       `json:"completed"`
	Total          int       `json:"total"`
	File           string    `json:"file,omitempty"`
	ShipmentsFound int       `json:"shipments_found,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Inferred       bool      `json:"inferred,omitempty"`
}

// Terminal reports whether this snapshot ends observation.
func (s BatchSnapshot) Terminal() bool {
	return s.Step == BatchStepComplete || s.Step == BatchStepError
}

// DutyRates is the result of an external duty lookup for a classification code.
type DutyRates struct {
	DutyRate        float64  `json:"duty_rate"`
	BaseDutyRate    float64  `json:"base_duty_rate"`
	TariffScenarios []string `json:"tariff_scenarios,omitempty"`
}
