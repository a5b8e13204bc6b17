// Package propagate computes how an edit to a shared entity (a receiver
// address or a customs product) fans out to the other locations in a draft
// that hold a copy of it. All functions are pure: they return patched copies
// and never mutate their inputs. Merges carry absolute values, so applying
// the same edit twice is safe.
package propagate

import "shipdraft/internal/domain"

// Addresses applies an edited receiver address to the boxes that share it.
// In shared mode every box receives the new address. In multi mode only the
// boxes whose pre-edit address key equals the edited box's pre-edit key (the
// group the box belonged to before the edit) are updated.
//
// The returned slice is a deep copy; the target indices are returned for
// callers that need to report what changed. An out-of-range editedIndex
// returns the boxes unchanged.
func Addresses(boxes []domain.ShipmentBox, editedIndex int, newAddr domain.ShipmentAddress, mode domain.AddressingMode) ([]domain.ShipmentBox, []int) {
	out := domain.CloneBoxes(boxes)
	if editedIndex < 0 || editedIndex >= len(boxes) {
		return out, nil
	}

	var targets []int
	if mode == domain.AddressingShared {
		for i := range out {
			targets = append(targets, i)
		}
	} else {
		groupKey := domain.AddressKey(boxes[editedIndex].ReceiverAddress)
		for i := range boxes {
			if domain.AddressKey(boxes[i].ReceiverAddress) == groupKey {
				targets = append(targets, i)
			}
		}
	}

	for _, i := range targets {
		out[i].ReceiverAddress = newAddr
	}
	return out, targets
}
