package xindus

import (
	"fmt"

	"shipdraft/internal/domain"
)

// IssueCategory classifies a validation issue by the part of the draft it
// concerns.
type IssueCategory string

const (
	CategoryShipment IssueCategory = "shipment"
	CategoryAddress  IssueCategory = "address"
	CategoryBox      IssueCategory = "box"
	CategoryItem     IssueCategory = "item"
)

// Issue is a single validation finding. Issues never block editing; they only
// gate forwarding to the downstream platform.
type Issue struct {
	Category IssueCategory `json:"category"`
	Message  string        `json:"message"`
}

// ValidateForXindus evaluates a shipment against the downstream platform's
// required-field contract and returns an ordered issue list. It never panics;
// a nil shipment yields a single shipment-category issue.
func ValidateForXindus(s *domain.Shipment) []Issue {
	issues := []Issue{}
	if s == nil {
		return append(issues, Issue{CategoryShipment, "Shipment data is missing"})
	}

	if s.InvoiceNumber == "" {
		issues = append(issues, Issue{CategoryShipment, "Invoice number is required"})
	}
	if s.InvoiceDate == "" {
		issues = append(issues, Issue{CategoryShipment, "Invoice date is required"})
	}
	if !domain.ValidClearanceTypes[s.ClearanceType] {
		issues = append(issues, Issue{CategoryShipment,
			fmt.Sprintf("Clearance type %q is not supported; expected one of ddp, ddu, dap", s.ClearanceType)})
	}
	if NormalizeCountry(s.DestinationCountry) == "" {
		issues = append(issues, Issue{CategoryShipment,
			fmt.Sprintf("Destination country %q does not resolve to a country code", s.DestinationCountry)})
	}

	issues = append(issues, validateAddress("Shipper", s.ShipperAddress)...)

	// Billing address is optional: when no name is present it silently falls
	// back to the shipper address downstream.
	if s.BillingAddress.Name != "" {
		issues = append(issues, validateAddress("Billing", s.BillingAddress)...)
	}

	if len(s.Boxes) == 0 {
		issues = append(issues, Issue{CategoryBox, "At least one box is required"})
		return issues
	}

	// Validate each receiver group once, by address key.
	seenReceivers := map[string]bool{}
	for i := range s.Boxes {
		key := domain.AddressKey(s.Boxes[i].ReceiverAddress)
		if seenReceivers[key] {
			continue
		}
		seenReceivers[key] = true
		issues = append(issues, validateAddress(fmt.Sprintf("Receiver (box %d)", i+1), s.Boxes[i].ReceiverAddress)...)
	}

	for i := range s.Boxes {
		box := &s.Boxes[i]
		if box.LengthCM <= 0 || box.WidthCM <= 0 || box.HeightCM <= 0 {
			issues = append(issues, Issue{CategoryBox,
				fmt.Sprintf("Box %d must have positive length, width, and height", i+1)})
		}
		if box.WeightKG <= 0 {
			issues = append(issues, Issue{CategoryBox,
				fmt.Sprintf("Box %d must have a positive weight", i+1)})
		}
		if len(box.Items) == 0 {
			issues = append(issues, Issue{CategoryBox,
				fmt.Sprintf("Box %d must contain at least one item", i+1)})
			continue
		}
		for j := range box.Items {
			issues = append(issues, validateItem(i+1, j+1, &box.Items[j])...)
		}
	}

	return issues
}

// requiredAddressFields is the downstream contract's required field set.
var requiredAddressFields = []struct {
	label   string
	extract func(domain.ShipmentAddress) string
}{
	{"name", func(a domain.ShipmentAddress) string { return a.Name }},
	{"email", func(a domain.ShipmentAddress) string { return a.Email }},
	{"phone", func(a domain.ShipmentAddress) string { return a.Phone }},
	{"street", func(a domain.ShipmentAddress) string { return a.Street }},
	{"city", func(a domain.ShipmentAddress) string { return a.City }},
	{"state", func(a domain.ShipmentAddress) string { return a.State }},
	{"postal code", func(a domain.ShipmentAddress) string { return a.PostalCode }},
	{"country", func(a domain.ShipmentAddress) string { return a.Country }},
}

func validateAddress(who string, a domain.ShipmentAddress) []Issue {
	var issues []Issue
	for _, f := range requiredAddressFields {
		if f.extract(a) == "" {
			issues = append(issues, Issue{CategoryAddress,
				fmt.Sprintf("%s address is missing %s", who, f.label)})
		}
	}
	return issues
}

func validateItem(boxNo, itemNo int, item *domain.ShipmentBoxItem) []Issue {
	var issues []Issue
	at := fmt.Sprintf("Box %d item %d", boxNo, itemNo)
	if item.Description == "" {
		issues = append(issues, Issue{CategoryItem, at + " is missing a description"})
	}
	if item.Quantity <= 0 {
		issues = append(issues, Issue{CategoryItem, at + " must have a positive quantity"})
	}
	if item.UnitPrice <= 0 {
		issues = append(issues, Issue{CategoryItem, at + " must have a positive unit price"})
	}
	if item.HSN == "" {
		issues = append(issues, Issue{CategoryItem, at + " is missing an export classification code"})
	}
	if item.IHSN == "" {
		issues = append(issues, Issue{CategoryItem, at + " is missing an import classification code"})
	}
	if item.EffectiveFOB() <= 0 {
		issues = append(issues, Issue{CategoryItem, at + " must have a positive FOB value"})
	}
	return issues
}
