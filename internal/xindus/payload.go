package xindus

import "shipdraft/internal/domain"

// Payload is the downstream platform's flat shipment creation request. Field
// names mirror the platform contract and must be kept in sync with it.
type Payload struct {
	InvoiceNumber      string `json:"invoiceNumber"`
	InvoiceDate        string `json:"invoiceDate"`
	Currency           string `json:"currency,omitempty"`
	ClearanceType      string `json:"clearanceType"`
	DestinationCountry string `json:"destinationCountry"`

	ShipperName    string `json:"shipperName"`
	ShipperEmail   string `json:"shipperEmail"`
	ShipperPhone   string `json:"shipperPhone"`
	ShipperStreet  string `json:"shipperStreet"`
	ShipperCity    string `json:"shipperCity"`
	ShipperState   string `json:"shipperState"`
	ShipperZip     string `json:"shipperZip"`
	ShipperCountry string `json:"shipperCountry"`

	BillingName    string `json:"billingName"`
	BillingEmail   string `json:"billingEmail"`
	BillingPhone   string `json:"billingPhone"`
	BillingStreet  string `json:"billingStreet"`
	BillingCity    string `json:"billingCity"`
	BillingState   string `json:"billingState"`
	BillingZip     string `json:"billingZip"`
	BillingCountry string `json:"billingCountry"`

	Boxes    []PayloadBox     `json:"boxes"`
	Products []PayloadProduct `json:"products"`
}

// PayloadBox is one box row in the flat schema.
type PayloadBox struct {
	LengthCM float64 `json:"lengthCm"`
	WidthCM  float64 `json:"widthCm"`
	HeightCM float64 `json:"heightCm"`
	WeightKG float64 `json:"weightKg"`

	ReceiverName    string `json:"receiverName"`
	ReceiverEmail   string `json:"receiverEmail"`
	ReceiverPhone   string `json:"receiverPhone"`
	ReceiverStreet  string `json:"receiverStreet"`
	ReceiverCity    string `json:"receiverCity"`
	ReceiverState   string `json:"receiverState"`
	ReceiverZip     string `json:"receiverZip"`
	ReceiverCountry string `json:"receiverCountry"`
	WarehouseID     string `json:"warehouseId,omitempty"`

	Items []PayloadItem `json:"items"`
}

// PayloadItem is one line item row in the flat schema.
type PayloadItem struct {
	Description     string  `json:"description"`
	ExportCode      string  `json:"exportCode"`
	ImportCode      string  `json:"importCode"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	UnitFOB         float64 `json:"unitFob"`
	DutyRate        float64 `json:"dutyRate,omitempty"`
	TaxPercent      float64 `json:"taxPercent,omitempty"`
	CountryOfOrigin string  `json:"countryOfOrigin,omitempty"`
}

// PayloadProduct is one customs summary row in the flat schema.
type PayloadProduct struct {
	Description     string  `json:"description"`
	ExportCode      string  `json:"exportCode"`
	ImportCode      string  `json:"importCode"`
	Quantity        int     `json:"quantity"`
	TotalValue      float64 `json:"totalValue"`
	DutyRate        float64 `json:"dutyRate,omitempty"`
	BaseDutyRate    float64 `json:"baseDutyRate,omitempty"`
	CountryOfOrigin string  `json:"countryOfOrigin,omitempty"`
}

// BuildPayload maps effective draft data into the downstream flat schema,
// applying country, postal code, date, and classification code normalization.
// Customs summary rows are re-derived from the boxes so the declaration always
// matches the packed items.
func BuildPayload(s *domain.Shipment) *Payload {
	destination := NormalizeCountry(s.DestinationCountry)

	billing := s.BillingAddress
	if billing.Name == "" {
		billing = s.ShipperAddress
	}

	p := &Payload{
		InvoiceNumber:      s.InvoiceNumber,
		InvoiceDate:        NormalizeDate(s.InvoiceDate),
		Currency:           s.Currency,
		ClearanceType:      string(s.ClearanceType),
		DestinationCountry: destination,

		ShipperName:    s.ShipperAddress.Name,
		ShipperEmail:   s.ShipperAddress.Email,
		ShipperPhone:   s.ShipperAddress.Phone,
		ShipperStreet:  joinStreet(s.ShipperAddress),
		ShipperCity:    s.ShipperAddress.City,
		ShipperState:   s.ShipperAddress.State,
		ShipperZip:     NormalizeZip(s.ShipperAddress.PostalCode, s.ShipperAddress.Country),
		ShipperCountry: NormalizeCountry(s.ShipperAddress.Country),

		BillingName:    billing.Name,
		BillingEmail:   billing.Email,
		BillingPhone:   billing.Phone,
		BillingStreet:  joinStreet(billing),
		BillingCity:    billing.City,
		BillingState:   billing.State,
		BillingZip:     NormalizeZip(billing.PostalCode, billing.Country),
		BillingCountry: NormalizeCountry(billing.Country),
	}

	for i := range s.Boxes {
		box := &s.Boxes[i]
		pb := PayloadBox{
			LengthCM: box.LengthCM,
			WidthCM:  box.WidthCM,
			HeightCM: box.HeightCM,
			WeightKG: box.WeightKG,

			ReceiverName:    box.ReceiverAddress.Name,
			ReceiverEmail:   box.ReceiverAddress.Email,
			ReceiverPhone:   box.ReceiverAddress.Phone,
			ReceiverStreet:  joinStreet(box.ReceiverAddress),
			ReceiverCity:    box.ReceiverAddress.City,
			ReceiverState:   box.ReceiverAddress.State,
			ReceiverZip:     NormalizeZip(box.ReceiverAddress.PostalCode, box.ReceiverAddress.Country),
			ReceiverCountry: NormalizeCountry(box.ReceiverAddress.Country),
			WarehouseID:     box.ReceiverAddress.WarehouseID,
		}
		for j := range box.Items {
			item := &box.Items[j]
			pb.Items = append(pb.Items, PayloadItem{
				Description:     item.Description,
				ExportCode:      StripCode(item.HSN),
				ImportCode:      StripCode(item.IHSN),
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				UnitFOB:         item.EffectiveFOB(),
				DutyRate:        item.DutyRate,
				TaxPercent:      item.TaxPercent,
				CountryOfOrigin: NormalizeCountry(item.CountryOfOrigin),
			})
		}
		p.Boxes = append(p.Boxes, pb)
	}

	for _, row := range DeriveProductSummary(s.Boxes) {
		p.Products = append(p.Products, PayloadProduct{
			Description:     row.Description,
			ExportCode:      StripCode(row.HSN),
			ImportCode:      StripCode(row.IHSN),
			Quantity:        row.Quantity,
			TotalValue:      row.TotalValue,
			DutyRate:        row.DutyRate,
			BaseDutyRate:    row.BaseDutyRate,
			CountryOfOrigin: NormalizeCountry(row.CountryOfOrigin),
		})
	}

	return p
}

func joinStreet(a domain.ShipmentAddress) string {
	if a.Street2 == "" {
		return a.Street
	}
	return a.Street + ", " + a.Street2
}
