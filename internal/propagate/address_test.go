package propagate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipdraft/internal/domain"
)

func addr(street, city, zip string) domain.ShipmentAddress {
	return domain.ShipmentAddress{
		Name:       "Receiver",
		Street:     street,
		City:       city,
		PostalCode: zip,
		Country:    "US",
	}
}

func boxWith(a domain.ShipmentAddress) domain.ShipmentBox {
	return domain.ShipmentBox{
		LengthCM:        10,
		ReceiverAddress: a,
		Items:           []domain.ShipmentBoxItem{{Description: "Widget", Quantity: 1}},
	}
}

func TestAddresses_SharedModeUpdatesAllBoxes(t *testing.T) {
	boxes := []domain.ShipmentBox{
		boxWith(addr("1 First St", "Alpha", "11111")),
		boxWith(addr("2 Second St", "Beta", "22222")),
		boxWith(addr("3 Third St", "Gamma", "33333")),
	}
	newAddr := addr("9 New St", "Delta", "99999")

	patched, touched := Addresses(boxes, 1, newAddr, domain.AddressingShared)

	assert.Equal(t, []int{0, 1, 2}, touched)
	for i := range patched {
		assert.Equal(t, newAddr, patched[i].ReceiverAddress)
	}
}

func TestAddresses_MultiModeUpdatesOnlyMatchingGroup(t *testing.T) {
	shared := addr("1 First St", "Alpha", "11111")
	other := addr("2 Second St", "Beta", "22222")
	boxes := []domain.ShipmentBox{
		boxWith(shared),
		boxWith(other),
		boxWith(shared),
	}
	newAddr := addr("9 New St", "Delta", "99999")

	patched, touched := Addresses(boxes, 0, newAddr, domain.AddressingMulti)

	assert.Equal(t, []int{0, 2}, touched)
	assert.Equal(t, newAddr, patched[0].ReceiverAddress)
	assert.Equal(t, other, patched[1].ReceiverAddress)
	assert.Equal(t, newAddr, patched[2].ReceiverAddress)
}

func TestAddresses_GroupMatchIgnoresCaseAndContactFields(t *testing.T) {
	a := addr("1 First St", "Alpha", "11111")
	b := addr("1 FIRST ST", "alpha", "11111")
	b.Name = "Someone Else"
	b.Phone = "+1 555 0999"

	boxes := []domain.ShipmentBox{boxWith(a), boxWith(b)}
	newAddr := addr("9 New St", "Delta", "99999")

	_, touched := Addresses(boxes, 0, newAddr, domain.AddressingMulti)
	assert.Equal(t, []int{0, 1}, touched)
}

func TestAddresses_DoesNotMutateInput(t *testing.T) {
	original := addr("1 First St", "Alpha", "11111")
	boxes := []domain.ShipmentBox{boxWith(original)}

	patched, _ := Addresses(boxes, 0, addr("9 New St", "Delta", "99999"), domain.AddressingShared)

	assert.Equal(t, original, boxes[0].ReceiverAddress)
	assert.NotEqual(t, boxes[0].ReceiverAddress, patched[0].ReceiverAddress)
}

func TestAddresses_Idempotent(t *testing.T) {
	boxes := []domain.ShipmentBox{
		boxWith(addr("1 First St", "Alpha", "11111")),
		boxWith(addr("1 First St", "Alpha", "11111")),
	}
	newAddr := addr("9 New St", "Delta", "99999")

	once, _ := Addresses(boxes, 0, newAddr, domain.AddressingMulti)
	// After the first pass the group key changed; re-editing box 0 with the
	// same address targets the new group and changes nothing.
	twice, touched := Addresses(once, 0, newAddr, domain.AddressingMulti)

	assert.Equal(t, []int{0, 1}, touched)
	assert.Equal(t, once, twice)
}

func TestAddresses_OutOfRangeIndex(t *testing.T) {
	boxes := []domain.ShipmentBox{boxWith(addr("1 First St", "Alpha", "11111"))}

	patched, touched := Addresses(boxes, 5, addr("9 New St", "Delta", "99999"), domain.AddressingShared)
	require.Nil(t, touched)
	assert.Equal(t, boxes, patched)
}
