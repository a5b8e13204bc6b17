package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipdraft/internal/config"
	"shipdraft/internal/domain"
	"shipdraft/internal/port"
	"shipdraft/internal/xindus"
	"shipdraft/mocks"
)

func testBulkConfig() *config.BulkConfig {
	return &config.BulkConfig{RatePerSec: 1000, Concurrency: 4}
}

func reviewAddress(name string) domain.ShipmentAddress {
	return domain.ShipmentAddress{
		Name:       name,
		Street:     "123 Main St",
		City:       "Allentown",
		State:      "PA",
		PostalCode: "18031",
		Country:    "United States",
		Phone:      "+1 555 0100",
		Email:      strings.ToLower(name) + "@example.com",
	}
}

// reviewDraft builds a draft that passes the forwarding checks as-is.
func reviewDraft() *domain.Draft {
	return &domain.Draft{
		ID:       uuid.New(),
		Status:   domain.DraftStatusPendingReview,
		Revision: 1,
		CanonicalData: domain.Shipment{
			InvoiceNumber:      "INV-100",
			InvoiceDate:        "2024-03-21",
			Currency:           "USD",
			ClearanceType:      domain.ClearanceDDP,
			DestinationCountry: "United States",
			AddressingMode:     domain.AddressingShared,
			ShipperAddress:     reviewAddress("Shipper"),
			Boxes: []domain.ShipmentBox{
				{
					LengthCM: 40, WidthCM: 30, HeightCM: 20, WeightKG: 5,
					ReceiverAddress: reviewAddress("Receiver"),
					Items: []domain.ShipmentBoxItem{
						{
							Description: "Cotton T-Shirt",
							HSN:         "61091000",
							IHSN:        "6109.10.0012",
							Quantity:    10,
							UnitPrice:   4.5,
							UnitFOB:     4.2,
						},
					},
				},
				{
					LengthCM: 40, WidthCM: 30, HeightCM: 20, WeightKG: 4,
					ReceiverAddress: reviewAddress("Receiver"),
					Items: []domain.ShipmentBoxItem{
						{
							Description: "Cotton T-Shirt",
							HSN:         "61091000",
							IHSN:        "6109.10.0012",
							Quantity:    3,
							UnitPrice:   4.5,
							UnitFOB:     4.2,
						},
					},
				},
			},
			Products: []domain.ProductDetail{
				{Description: "Cotton T-Shirt", HSN: "61091000", IHSN: "6109.10.0012", Quantity: 13, UnitPrice: 4.5},
			},
		},
	}
}

func TestDraftService_StageFieldRequiresSession(t *testing.T) {
	svc := NewDraftService(new(mocks.MockDraftsService), nil, nil, testBulkConfig())

	err := svc.StageField(context.Background(), uuid.New(), "invoice_number", "INV-1")

	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}

func TestDraftService_OpenSessionAndStage(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())

	data, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-100", data.InvoiceNumber)

	require.NoError(t, svc.StageField(context.Background(), draft.ID, "invoice_number", "INV-101"))

	staged, pending, err := svc.SessionData(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-101", staged.InvoiceNumber)
	assert.Equal(t, 1, pending)
}

func TestDraftService_ReopenDiscardsStagedEdits(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())

	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)
	require.NoError(t, svc.StageField(context.Background(), draft.ID, "invoice_number", "INV-999"))

	_, err = svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	_, pending, err := svc.SessionData(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestDraftService_EditBoxAddressPropagatesSharedMode(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	newAddr := reviewAddress("Receiver")
	newAddr.Street = "500 Oak Ave"

	touched, err := svc.EditBoxAddress(context.Background(), draft.ID, 0, newAddr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, touched)

	staged, _, err := svc.SessionData(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "500 Oak Ave", staged.Boxes[0].ReceiverAddress.Street)
	assert.Equal(t, "500 Oak Ave", staged.Boxes[1].ReceiverAddress.Street)
}

func TestDraftService_EditBoxAddressIndexOutOfRange(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	_, err = svc.EditBoxAddress(context.Background(), draft.ID, 5, reviewAddress("Receiver"))
	assert.ErrorIs(t, err, domain.ErrInvalidFieldValue)
}

func TestDraftService_EditProductPropagatesToItems(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	updated := draft.CanonicalData.Products[0]
	updated.HSN = "61099090"

	result, err := svc.EditProduct(context.Background(), draft.ID, 0, updated)
	require.NoError(t, err)
	assert.Equal(t, 2, result.MatchedItems)
	assert.False(t, result.DutyPending)

	staged, _, err := svc.SessionData(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "61099090", staged.Products[0].HSN)
	assert.Equal(t, "61099090", staged.Boxes[0].Items[0].HSN)
	assert.Equal(t, "61099090", staged.Boxes[1].Items[0].HSN)
}

func TestDraftService_EditProductImportCodeTriggersDutyPass(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	duty := new(mocks.MockDutyLookup)
	looked := make(chan struct{})
	duty.On("Lookup", mock.Anything, "6109.90.1050", "United States", "").
		Return(&domain.DutyRates{DutyRate: 16.5, BaseDutyRate: 12.0}, nil).
		Run(func(mock.Arguments) { close(looked) })

	svc := NewDraftService(drafts, duty, nil, testBulkConfig())
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	updated := draft.CanonicalData.Products[0]
	updated.IHSN = "6109.90.1050"

	result, err := svc.EditProduct(context.Background(), draft.ID, 0, updated)
	require.NoError(t, err)
	assert.True(t, result.DutyPending)

	select {
	case <-looked:
	case <-time.After(5 * time.Second):
		t.Fatal("duty lookup was not issued")
	}

	// The async pass stages the rates once the lookup returns.
	require.Eventually(t, func() bool {
		staged, _, err := svc.SessionData(draft.ID)
		return err == nil && staged.Products[0].DutyRate == 16.5
	}, 5*time.Second, 10*time.Millisecond)

	staged, _, err := svc.SessionData(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 16.5, staged.Boxes[0].Items[0].DutyRate)
	duty.AssertExpectations(t)
}

func TestDraftService_EditProductNoOp(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	result, err := svc.EditProduct(context.Background(), draft.ID, 0, draft.CanonicalData.Products[0])
	require.NoError(t, err)
	assert.Equal(t, 0, result.MatchedItems)

	_, pending, err := svc.SessionData(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestDraftService_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewDraftService(new(mocks.MockDraftsService), nil, nil, testBulkConfig())

	err := svc.UpdateStatus(context.Background(), uuid.New(), domain.DraftStatus("bogus"))

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDraftService_BulkUpdateStatusAccountsForEveryDraft(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	drafts := new(mocks.MockDraftsService)
	drafts.On("UpdateStatus", mock.Anything, ids[0], domain.DraftStatusApproved).Return(nil)
	drafts.On("UpdateStatus", mock.Anything, ids[1], domain.DraftStatusApproved).Return(domain.ErrDraftNotFound)
	drafts.On("UpdateStatus", mock.Anything, ids[2], domain.DraftStatusApproved).Return(nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())

	result, err := svc.BulkUpdateStatus(context.Background(), ids, domain.DraftStatusApproved)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{ids[0], ids[2]}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, domain.ErrDraftNotFound.Error(), result.Failed[ids[1]])
}

func TestDraftService_BulkUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewDraftService(new(mocks.MockDraftsService), nil, nil, testBulkConfig())

	_, err := svc.BulkUpdateStatus(context.Background(), []uuid.UUID{uuid.New()}, domain.DraftStatus("bogus"))

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDraftService_ForwardBlockedByValidation(t *testing.T) {
	draft := reviewDraft()
	draft.CanonicalData.InvoiceNumber = ""
	draft.CanonicalData.ShipperAddress.Email = ""

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)
	logistics := new(mocks.MockLogisticsGateway)

	svc := NewDraftService(drafts, nil, logistics, testBulkConfig())

	result, err := svc.Forward(context.Background(), draft.ID)
	assert.ErrorIs(t, err, domain.ErrValidationBlocked)
	require.NotNil(t, result)
	assert.Empty(t, result.ShipmentID)
	assert.Len(t, result.Issues, 2)
	logistics.AssertNotCalled(t, "CreateShipment", mock.Anything, mock.Anything)
}

func TestDraftService_ForwardSubmitsAndApproves(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)
	drafts.On("UpdateStatus", mock.Anything, draft.ID, domain.DraftStatusApproved).Return(nil)

	logistics := new(mocks.MockLogisticsGateway)
	logistics.On("CreateShipment", mock.Anything, mock.MatchedBy(func(p *xindus.Payload) bool {
		return p.InvoiceNumber == "INV-100"
	})).Return("XIN-42", nil)

	svc := NewDraftService(drafts, nil, logistics, testBulkConfig())

	result, err := svc.Forward(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "XIN-42", result.ShipmentID)
	assert.Empty(t, result.Issues)
	drafts.AssertExpectations(t)
	logistics.AssertExpectations(t)
}

func TestDraftService_ForwardUsesSessionWorkingCopy(t *testing.T) {
	draft := reviewDraft()
	draft.CanonicalData.InvoiceNumber = ""

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)
	drafts.On("UpdateStatus", mock.Anything, draft.ID, domain.DraftStatusApproved).Return(nil)

	logistics := new(mocks.MockLogisticsGateway)
	logistics.On("CreateShipment", mock.Anything, mock.MatchedBy(func(p *xindus.Payload) bool {
		return p.InvoiceNumber == "INV-777"
	})).Return("XIN-43", nil)

	svc := NewDraftService(drafts, nil, logistics, testBulkConfig())

	// The staged-but-unflushed invoice number satisfies validation.
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)
	require.NoError(t, svc.StageField(context.Background(), draft.ID, "invoice_number", "INV-777"))

	result, err := svc.Forward(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "XIN-43", result.ShipmentID)
}

func TestDraftService_ForwardGatewayError(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	logistics := new(mocks.MockLogisticsGateway)
	logistics.On("CreateShipment", mock.Anything, mock.Anything).
		Return("", errors.New("upstream down"))

	svc := NewDraftService(drafts, nil, logistics, testBulkConfig())

	_, err := svc.Forward(context.Background(), draft.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	drafts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftService_ValidateReportsIssues(t *testing.T) {
	draft := reviewDraft()
	draft.CanonicalData.InvoiceDate = ""

	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())

	issues, err := svc.Validate(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Invoice date is required", issues[0].Message)
}

func TestDraftService_DeleteClosesSession(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("Get", mock.Anything, draft.ID).Return(draft, nil)
	drafts.On("Delete", mock.Anything, draft.ID).Return(nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())
	_, err := svc.OpenSession(context.Background(), draft.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), draft.ID))

	_, _, err = svc.SessionData(draft.ID)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}

func TestDraftService_ExportCSV(t *testing.T) {
	draft := reviewDraft()
	drafts := new(mocks.MockDraftsService)
	drafts.On("List", mock.Anything, mock.Anything).Return([]domain.Draft{*draft}, 1, nil)

	svc := NewDraftService(drafts, nil, nil, testBulkConfig())

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), port.DraftFilter{}, &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xef\xbb\xbf"))
	assert.Contains(t, out, "INV-100")
	assert.Contains(t, out, "Cotton T-Shirt")
}
