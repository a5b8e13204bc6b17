package domain

import "strings"

// AddressKey returns the identity key used to group boxes into receiver
// groups: street, city, and postal code, lower-cased. Two addresses with the
// same key are treated as the same physical destination regardless of
// contact-field differences.
func AddressKey(a ShipmentAddress) string {
	return strings.ToLower(strings.TrimSpace(a.Street)) + "|" +
		strings.ToLower(strings.TrimSpace(a.City)) + "|" +
		strings.ToLower(strings.TrimSpace(a.PostalCode))
}

// NormalizeDescription canonicalizes an item or product description for
// matching: trimmed and lower-cased.
func NormalizeDescription(desc string) string {
	return strings.ToLower(strings.TrimSpace(desc))
}

// ProductKey returns the identity key of a customs summary row: normalized
// description plus the origin classification code.
func ProductKey(description, hsn string) string {
	return NormalizeDescription(description) + "|" + strings.TrimSpace(hsn)
}
