// Package correction implements the field-level correction model and the
// in-memory editing session for a draft. Corrections are value objects staged
// locally; nothing reaches the network until Flush.
package correction

import (
	"fmt"

	"shipdraft/internal/domain"
)

// Lens is a typed accessor for one correctable field. The closed lens set
// replaces free-form dot paths: an unknown path is rejected at stage time
// while the wire shape of a correction (field_path/old_value/new_value) is
// unchanged.
type Lens struct {
	Get func(*domain.Shipment) interface{}
	Set func(*domain.Shipment, interface{}) error
}

// collectionPaths are addressed by whole-collection replacement, never by a
// scalar correction.
var collectionPaths = map[string]bool{
	PathBoxes:    true,
	PathProducts: true,
}

// Wire paths for the two replaceable collections.
const (
	PathBoxes    = "shipment_boxes"
	PathProducts = "product_details"
)

var lenses = buildLenses()

// LensFor resolves a field path to its lens. Collection paths return
// ErrCollectionFieldPath, unknown paths ErrUnknownFieldPath.
func LensFor(path string) (Lens, error) {
	if collectionPaths[path] {
		return Lens{}, domain.ErrCollectionFieldPath
	}
	l, ok := lenses[path]
	if !ok {
		return Lens{}, domain.ErrUnknownFieldPath
	}
	return l, nil
}

func buildLenses() map[string]Lens {
	m := map[string]Lens{
		"invoice_number": stringLens(
			func(s *domain.Shipment) *string { return &s.InvoiceNumber }),
		"invoice_date": stringLens(
			func(s *domain.Shipment) *string { return &s.InvoiceDate }),
		"currency": stringLens(
			func(s *domain.Shipment) *string { return &s.Currency }),
		"destination_country": stringLens(
			func(s *domain.Shipment) *string { return &s.DestinationCountry }),
		"remarks": stringLens(
			func(s *domain.Shipment) *string { return &s.Remarks }),
		"clearance_type": {
			Get: func(s *domain.Shipment) interface{} { return string(s.ClearanceType) },
			Set: func(s *domain.Shipment, v interface{}) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				ct := domain.ClearanceType(str)
				if !domain.ValidClearanceTypes[ct] {
					return fmt.Errorf("%w: clearance_type %q", domain.ErrInvalidFieldValue, str)
				}
				s.ClearanceType = ct
				return nil
			},
		},
		"addressing_mode": {
			Get: func(s *domain.Shipment) interface{} { return string(s.AddressingMode) },
			Set: func(s *domain.Shipment, v interface{}) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				mode := domain.AddressingMode(str)
				if mode != domain.AddressingShared && mode != domain.AddressingMulti {
					return fmt.Errorf("%w: addressing_mode %q", domain.ErrInvalidFieldValue, str)
				}
				s.AddressingMode = mode
				return nil
			},
		},
	}

	addAddressLenses(m, "shipper_address", func(s *domain.Shipment) *domain.ShipmentAddress { return &s.ShipperAddress })
	addAddressLenses(m, "billing_address", func(s *domain.Shipment) *domain.ShipmentAddress { return &s.BillingAddress })
	return m
}

// addressFields enumerates the correctable fields of an embedded address.
var addressFields = []struct {
	name string
	sel  func(*domain.ShipmentAddress) *string
}{
	{"name", func(a *domain.ShipmentAddress) *string { return &a.Name }},
	{"street", func(a *domain.ShipmentAddress) *string { return &a.Street }},
	{"street2", func(a *domain.ShipmentAddress) *string { return &a.Street2 }},
	{"city", func(a *domain.ShipmentAddress) *string { return &a.City }},
	{"district", func(a *domain.ShipmentAddress) *string { return &a.District }},
	{"state", func(a *domain.ShipmentAddress) *string { return &a.State }},
	{"postal_code", func(a *domain.ShipmentAddress) *string { return &a.PostalCode }},
	{"country", func(a *domain.ShipmentAddress) *string { return &a.Country }},
	{"phone", func(a *domain.ShipmentAddress) *string { return &a.Phone }},
	{"email", func(a *domain.ShipmentAddress) *string { return &a.Email }},
	{"contact_name", func(a *domain.ShipmentAddress) *string { return &a.ContactName }},
	{"warehouse_id", func(a *domain.ShipmentAddress) *string { return &a.WarehouseID }},
}

func addAddressLenses(m map[string]Lens, prefix string, sel func(*domain.Shipment) *domain.ShipmentAddress) {
	for _, f := range addressFields {
		field := f.sel
		m[prefix+"."+f.name] = Lens{
			Get: func(s *domain.Shipment) interface{} { return *field(sel(s)) },
			Set: func(s *domain.Shipment, v interface{}) error {
				str, err := asString(v)
				if err != nil {
					return err
				}
				*field(sel(s)) = str
				return nil
			},
		}
	}
}

func stringLens(sel func(*domain.Shipment) *string) Lens {
	return Lens{
		Get: func(s *domain.Shipment) interface{} { return *sel(s) },
		Set: func(s *domain.Shipment, v interface{}) error {
			str, err := asString(v)
			if err != nil {
				return err
			}
			*sel(s) = str
			return nil
		},
	}
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", domain.ErrInvalidFieldValue, v)
	}
	return s, nil
}
