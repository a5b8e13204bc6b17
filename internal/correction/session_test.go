package correction

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipdraft/internal/domain"
	"shipdraft/mocks"
)

func sessionDraft() *domain.Draft {
	return &domain.Draft{
		ID:       uuid.New(),
		Status:   domain.DraftStatusPendingReview,
		Revision: 3,
		CanonicalData: domain.Shipment{
			InvoiceNumber:      "INV-100",
			InvoiceDate:        "2024-03-21",
			Currency:           "USD",
			ClearanceType:      domain.ClearanceDDP,
			DestinationCountry: "United States",
			AddressingMode:     domain.AddressingShared,
			Boxes: []domain.ShipmentBox{
				{
					LengthCM: 40, WidthCM: 30, HeightCM: 20, WeightKG: 5,
					ReceiverAddress: domain.ShipmentAddress{Name: "Recv", City: "Allentown"},
					Items: []domain.ShipmentBoxItem{
						{Description: "Cotton T-Shirt", Quantity: 10, UnitPrice: 4.5},
					},
				},
			},
			Products: []domain.ProductDetail{
				{Description: "Cotton T-Shirt", Quantity: 10, UnitPrice: 4.5},
			},
		},
	}
}

func TestSession_EffectivePrefersCorrectedData(t *testing.T) {
	draft := sessionDraft()
	corrected := draft.CanonicalData.Clone()
	corrected.InvoiceNumber = "INV-200"
	draft.CorrectedData = corrected

	sess := NewSession(draft, nil)

	assert.Equal(t, "INV-200", sess.Effective().InvoiceNumber)
}

func TestSession_StageNoOpLeavesPendingEmpty(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)

	require.NoError(t, sess.Stage("invoice_number", "INV-100"))

	assert.Equal(t, 0, sess.PendingCount())
}

func TestSession_StageCollapsesRepeatedEdits(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)

	require.NoError(t, sess.Stage("invoice_number", "INV-101"))
	require.NoError(t, sess.Stage("invoice_number", "INV-102"))

	assert.Equal(t, 1, sess.PendingCount())
	sess.mu.Lock()
	defer sess.mu.Unlock()
	require.Len(t, sess.pending, 1)
	assert.Equal(t, "INV-100", sess.pending[0].OldValue)
	assert.Equal(t, "INV-102", sess.pending[0].NewValue)
}

func TestSession_StageBackToOriginalCancelsPending(t *testing.T) {
	// Returning a field to the value its first edit was computed against nets
	// out to nothing, so the pending correction is dropped and a flush sends
	// no patch at all.
	sess := NewSession(sessionDraft(), nil)

	require.NoError(t, sess.Stage("invoice_number", "INV-101"))
	require.NoError(t, sess.Stage("invoice_number", "INV-100"))

	assert.Equal(t, 0, sess.PendingCount())
	assert.Equal(t, "INV-100", sess.working.InvoiceNumber)

	sess.mu.Lock()
	patch := sess.buildPatchLocked()
	sess.mu.Unlock()
	assert.Empty(t, patch)
}

func TestSession_StageBackToOriginalRestagesCleanly(t *testing.T) {
	// A fresh edit after a cancellation stages a normal correction again.
	sess := NewSession(sessionDraft(), nil)

	require.NoError(t, sess.Stage("invoice_number", "INV-101"))
	require.NoError(t, sess.Stage("invoice_number", "INV-100"))
	require.NoError(t, sess.Stage("invoice_number", "INV-102"))

	assert.Equal(t, 1, sess.PendingCount())

	sess.mu.Lock()
	patch := sess.buildPatchLocked()
	sess.mu.Unlock()
	require.Len(t, patch, 1)
	assert.Equal(t, "INV-100", patch[0].OldValue)
	assert.Equal(t, "INV-102", patch[0].NewValue)
}

func TestSession_StageRejectsUnknownAndCollectionPaths(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)

	err := sess.Stage("no_such_field", "x")
	assert.ErrorIs(t, err, domain.ErrUnknownFieldPath)

	err = sess.Stage("shipment_boxes", "x")
	assert.ErrorIs(t, err, domain.ErrCollectionFieldPath)

	assert.Equal(t, 0, sess.PendingCount())
}

func TestSession_StageValidatesEnumValues(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)

	err := sess.Stage("clearance_type", "express")
	assert.ErrorIs(t, err, domain.ErrInvalidFieldValue)

	err = sess.Stage("clearance_type", 7)
	assert.ErrorIs(t, err, domain.ErrInvalidFieldValue)

	require.NoError(t, sess.Stage("clearance_type", "ddu"))
	assert.Equal(t, domain.ClearanceDDU, sess.Effective().ClearanceType)
}

func TestSession_EffectiveValueSeesStagedEdit(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)

	require.NoError(t, sess.Stage("shipper_address.city", "Mumbai"))

	got, err := sess.EffectiveValue("shipper_address.city")
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got)
}

func TestSession_StageBoxesLatestWins(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)
	origBoxes := sess.Effective().Boxes

	first := domain.CloneBoxes(origBoxes)
	first[0].WeightKG = 6
	sess.StageBoxes(first)

	second := domain.CloneBoxes(origBoxes)
	second[0].WeightKG = 7
	sess.StageBoxes(second)

	// A replaced collection counts as one pending correction no matter how
	// many times it was restaged.
	assert.Equal(t, 1, sess.PendingCount())
	assert.Equal(t, 7.0, sess.Effective().Boxes[0].WeightKG)

	sess.mu.Lock()
	patch := sess.buildPatchLocked()
	sess.mu.Unlock()
	require.Len(t, patch, 1)
	assert.Equal(t, PathBoxes, patch[0].FieldPath)
	assert.Equal(t, 5.0, patch[0].OldValue.([]domain.ShipmentBox)[0].WeightKG)
	assert.Equal(t, 7.0, patch[0].NewValue.([]domain.ShipmentBox)[0].WeightKG)
}

func TestSession_FlushSendsCombinedPatch(t *testing.T) {
	draft := sessionDraft()
	svc := new(mocks.MockDraftsService)
	sess := NewSession(draft, svc)

	require.NoError(t, sess.Stage("invoice_number", "INV-101"))
	boxes, products := sess.Collections()
	boxes[0].WeightKG = 6
	products[0].Quantity = 12
	sess.ReplaceCollections(boxes, products)

	flushed := sessionDraft()
	flushed.ID = draft.ID
	flushed.Revision = 4
	corrected := flushed.CanonicalData.Clone()
	corrected.InvoiceNumber = "INV-101"
	corrected.Boxes[0].WeightKG = 6
	corrected.Products[0].Quantity = 12
	flushed.CorrectedData = corrected

	svc.On("ApplyCorrections", mock.Anything, draft.ID, int64(3),
		mock.MatchedBy(func(patch []domain.Correction) bool {
			if len(patch) != 3 {
				return false
			}
			return patch[0].FieldPath == "invoice_number" &&
				patch[1].FieldPath == PathBoxes &&
				patch[2].FieldPath == PathProducts
		})).Return(flushed, nil)

	updated, err := sess.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Revision)

	// The session adopts the returned draft and clears its pending set.
	assert.Equal(t, 0, sess.PendingCount())
	assert.Equal(t, "INV-101", sess.Effective().InvoiceNumber)
	assert.Equal(t, int64(4), sess.Draft().Revision)
	svc.AssertExpectations(t)
}

func TestSession_FlushWithNothingPendingIsNoOp(t *testing.T) {
	draft := sessionDraft()
	svc := new(mocks.MockDraftsService)
	sess := NewSession(draft, svc)

	updated, err := sess.Flush(context.Background())
	require.NoError(t, err)
	assert.Same(t, draft, updated)
	svc.AssertNotCalled(t, "ApplyCorrections", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_FlushConflictKeepsPending(t *testing.T) {
	draft := sessionDraft()
	svc := new(mocks.MockDraftsService)
	sess := NewSession(draft, svc)

	require.NoError(t, sess.Stage("invoice_number", "INV-101"))

	svc.On("ApplyCorrections", mock.Anything, draft.ID, int64(3), mock.Anything).
		Return(nil, domain.ErrDraftConflict)

	_, err := sess.Flush(context.Background())
	assert.ErrorIs(t, err, domain.ErrDraftConflict)

	// Pending edits survive so the operator can re-pull and retry.
	assert.Equal(t, 1, sess.PendingCount())
	assert.Equal(t, "INV-101", sess.Effective().InvoiceNumber)
	assert.Equal(t, int64(3), sess.Draft().Revision)
}

func TestSession_DiscardRestoresEffectiveData(t *testing.T) {
	sess := NewSession(sessionDraft(), nil)

	require.NoError(t, sess.Stage("invoice_number", "INV-999"))
	boxes, _ := sess.Collections()
	boxes[0].WeightKG = 9
	sess.StageBoxes(boxes)

	sess.Discard()

	assert.Equal(t, 0, sess.PendingCount())
	assert.Equal(t, "INV-100", sess.Effective().InvoiceNumber)
	assert.Equal(t, 5.0, sess.Effective().Boxes[0].WeightKG)
}
