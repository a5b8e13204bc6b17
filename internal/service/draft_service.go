package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"shipdraft/internal/config"
	"shipdraft/internal/correction"
	"shipdraft/internal/domain"
	"shipdraft/internal/export"
	"shipdraft/internal/port"
	"shipdraft/internal/propagate"
	"shipdraft/internal/xindus"
)

// ProductEditResult reports the outcome of a product edit, including how far
// the change propagated into box items.
type ProductEditResult struct {
	Product      domain.ProductDetail `json:"product"`
	MatchedItems int                  `json:"matched_items"`
	DutyPending  bool                 `json:"duty_pending"`
}

// BulkStatusResult accounts for a bulk status update: every requested draft
// lands in exactly one of the two buckets.
type BulkStatusResult struct {
	Succeeded []uuid.UUID          `json:"succeeded"`
	Failed    map[uuid.UUID]string `json:"failed,omitempty"`
}

// ForwardResult is the outcome of forwarding a draft to the logistics platform.
type ForwardResult struct {
	ShipmentID string         `json:"shipment_id,omitempty"`
	Issues     []xindus.Issue `json:"issues,omitempty"`
}

// DraftService defines the draft review and correction contract.
type DraftService interface {
	List(ctx context.Context, filter port.DraftFilter) ([]domain.Draft, int, error)
	Get(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error)

	OpenSession(ctx context.Context, draftID uuid.UUID) (*domain.Shipment, error)
	StageField(ctx context.Context, draftID uuid.UUID, path string, value interface{}) error
	EditBoxAddress(ctx context.Context, draftID uuid.UUID, boxIndex int, addr domain.ShipmentAddress) ([]int, error)
	EditProduct(ctx context.Context, draftID uuid.UUID, productIndex int, updated domain.ProductDetail) (*ProductEditResult, error)
	SessionData(draftID uuid.UUID) (*domain.Shipment, int, error)
	Flush(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error)
	Discard(draftID uuid.UUID) error
	CloseSession(draftID uuid.UUID)

	UpdateStatus(ctx context.Context, draftID uuid.UUID, status domain.DraftStatus) error
	BulkUpdateStatus(ctx context.Context, draftIDs []uuid.UUID, status domain.DraftStatus) (*BulkStatusResult, error)
	Delete(ctx context.Context, draftID uuid.UUID) error

	Validate(ctx context.Context, draftID uuid.UUID) ([]xindus.Issue, error)
	Forward(ctx context.Context, draftID uuid.UUID) (*ForwardResult, error)

	ExportCSV(ctx context.Context, filter port.DraftFilter, w io.Writer) error
	ExportWorkbook(ctx context.Context, draftID uuid.UUID, w io.Writer) error
}

type draftService struct {
	drafts    port.DraftsService
	duty      port.DutyLookup
	logistics port.LogisticsGateway

	bulkLimit *rate.Limiter
	bulkConc  int

	mu       sync.Mutex
	sessions map[uuid.UUID]*correction.Session
}

// NewDraftService creates a new DraftService implementation.
func NewDraftService(
	drafts port.DraftsService,
	duty port.DutyLookup,
	logistics port.LogisticsGateway,
	bulkCfg *config.BulkConfig,
) DraftService {
	ratePerSec := bulkCfg.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 5
	}
	conc := bulkCfg.Concurrency
	if conc <= 0 {
		conc = 4
	}
	return &draftService{
		drafts:    drafts,
		duty:      duty,
		logistics: logistics,
		bulkLimit: rate.NewLimiter(rate.Limit(ratePerSec), 1),
		bulkConc:  conc,
		sessions:  make(map[uuid.UUID]*correction.Session),
	}
}

func (s *draftService) List(ctx context.Context, filter port.DraftFilter) ([]domain.Draft, int, error) {
	return s.drafts.List(ctx, filter)
}

func (s *draftService) Get(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	return s.drafts.Get(ctx, draftID)
}

// OpenSession loads the draft and starts (or restarts) a correction session
// over its effective data. Reopening discards any unflushed edits.
func (s *draftService) OpenSession(ctx context.Context, draftID uuid.UUID) (*domain.Shipment, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}

	sess := correction.NewSession(draft, s.drafts)

	s.mu.Lock()
	s.sessions[draftID] = sess
	s.mu.Unlock()

	log.Printf("draftService.OpenSession: session opened for draft %s (revision %d)", draftID, draft.Revision)
	return sess.Effective(), nil
}

func (s *draftService) session(draftID uuid.UUID) (*correction.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[draftID]
	if !ok {
		return nil, domain.ErrNoActiveSession
	}
	return sess, nil
}

// StageField stages one scalar field edit in the draft's session.
func (s *draftService) StageField(_ context.Context, draftID uuid.UUID, path string, value interface{}) error {
	sess, err := s.session(draftID)
	if err != nil {
		return err
	}
	return sess.Stage(path, value)
}

// EditBoxAddress replaces one box's receiver address and propagates it to the
// boxes sharing the same destination, per the shipment's addressing mode.
// The returned indices are the boxes that received the new address.
func (s *draftService) EditBoxAddress(_ context.Context, draftID uuid.UUID, boxIndex int, addr domain.ShipmentAddress) ([]int, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}

	data := sess.Effective()
	if boxIndex < 0 || boxIndex >= len(data.Boxes) {
		return nil, fmt.Errorf("%w: box index %d out of range", domain.ErrInvalidFieldValue, boxIndex)
	}

	patched, touched := propagate.Addresses(data.Boxes, boxIndex, addr, data.AddressingMode)
	sess.StageBoxes(patched)

	log.Printf("draftService.EditBoxAddress: draft %s box %d address propagated to %d box(es) (%s mode)",
		draftID, boxIndex, len(touched), data.AddressingMode)
	return touched, nil
}

// EditProduct updates one product summary row and propagates the changed
// fields into matching box items. When the import classification code
// changed, a second pass fills in fresh duty rates asynchronously.
func (s *draftService) EditProduct(ctx context.Context, draftID uuid.UUID, productIndex int, updated domain.ProductDetail) (*ProductEditResult, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}

	data := sess.Effective()
	if productIndex < 0 || productIndex >= len(data.Products) {
		return nil, fmt.Errorf("%w: product index %d out of range", domain.ErrInvalidFieldValue, productIndex)
	}
	old := data.Products[productIndex]

	patchedBoxes, patch, matched := propagate.Product(old, updated, data.Boxes)
	if patch.Empty() {
		return &ProductEditResult{Product: old, MatchedItems: 0}, nil
	}

	products := data.Products
	products[productIndex] = updated
	sess.ReplaceCollections(patchedBoxes, products)

	result := &ProductEditResult{
		Product:      updated,
		MatchedItems: matched,
	}

	if patch.ImportCodeChanged() && s.duty != nil {
		result.DutyPending = true
		go s.dutyPass(draftID, productIndex, updated, data.DestinationCountry)
	}

	log.Printf("draftService.EditProduct: draft %s product %d updated, %d item(s) patched, duty pending=%t",
		draftID, productIndex, matched, result.DutyPending)
	return result, nil
}

// dutyPass resolves duty rates for the product's new import code and stages
// them into the session if it is still open. Lookup failures leave the
// product's duty fields as they were.
func (s *draftService) dutyPass(draftID uuid.UUID, productIndex int, product domain.ProductDetail, destination string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rates, err := s.duty.Lookup(ctx, product.IHSN, destination, product.CountryOfOrigin)
	if err != nil {
		log.Printf("draftService.dutyPass: duty lookup for draft %s product %d failed: %v", draftID, productIndex, err)
		return
	}

	sess, err := s.session(draftID)
	if err != nil {
		// Session closed while the lookup was in flight.
		return
	}

	boxes, products := sess.Collections()
	if productIndex >= len(products) {
		return
	}
	patchedProduct, patchedBoxes := propagate.ApplyDutyRates(products[productIndex], boxes, *rates)
	products[productIndex] = patchedProduct
	sess.ReplaceCollections(patchedBoxes, products)

	log.Printf("draftService.dutyPass: draft %s product %d duty rate updated to %.2f", draftID, productIndex, rates.DutyRate)
}

// SessionData returns the session's current working data and pending edit count.
func (s *draftService) SessionData(draftID uuid.UUID) (*domain.Shipment, int, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, 0, err
	}
	return sess.Effective(), sess.PendingCount(), nil
}

// Flush pushes the session's pending corrections to the drafts service as one
// atomic patch. On a revision conflict the pending edits are kept so the
// caller can reload and retry.
func (s *draftService) Flush(ctx context.Context, draftID uuid.UUID) (*domain.Draft, error) {
	sess, err := s.session(draftID)
	if err != nil {
		return nil, err
	}
	return sess.Flush(ctx)
}

// Discard drops the session's pending edits, restoring the draft's stored state.
func (s *draftService) Discard(draftID uuid.UUID) error {
	sess, err := s.session(draftID)
	if err != nil {
		return err
	}
	sess.Discard()
	return nil
}

// CloseSession removes the draft's session. Unflushed edits are lost.
func (s *draftService) CloseSession(draftID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, draftID)
	s.mu.Unlock()
}

func (s *draftService) UpdateStatus(ctx context.Context, draftID uuid.UUID, status domain.DraftStatus) error {
	if !domain.ValidDraftStatuses[status] {
		return domain.ErrInvalidStatus
	}
	return s.drafts.UpdateStatus(ctx, draftID, status)
}

// BulkUpdateStatus applies the status to every draft, rate-limited against
// the upstream service. Per-draft failures do not stop the rest; the result
// accounts for every requested id.
func (s *draftService) BulkUpdateStatus(ctx context.Context, draftIDs []uuid.UUID, status domain.DraftStatus) (*BulkStatusResult, error) {
	if !domain.ValidDraftStatuses[status] {
		return nil, domain.ErrInvalidStatus
	}

	result := &BulkStatusResult{
		Failed: make(map[uuid.UUID]string),
	}
	var resultMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConc)

	for _, id := range draftIDs {
		id := id
		g.Go(func() error {
			if err := s.bulkLimit.Wait(gctx); err != nil {
				resultMu.Lock()
				result.Failed[id] = err.Error()
				resultMu.Unlock()
				return nil
			}
			err := s.drafts.UpdateStatus(gctx, id, status)
			resultMu.Lock()
			if err != nil {
				result.Failed[id] = err.Error()
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			resultMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("draftService.BulkUpdateStatus: %d/%d draft(s) set to %s",
		len(result.Succeeded), len(draftIDs), status)
	return result, nil
}

func (s *draftService) Delete(ctx context.Context, draftID uuid.UUID) error {
	s.CloseSession(draftID)
	return s.drafts.Delete(ctx, draftID)
}

// Validate runs the pre-forwarding checks over the draft's effective data,
// preferring the session's working copy when one is open.
func (s *draftService) Validate(ctx context.Context, draftID uuid.UUID) ([]xindus.Issue, error) {
	data, err := s.effectiveData(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return xindus.ValidateForXindus(data), nil
}

// Forward validates the draft, translates it into the logistics payload, and
// submits it. Validation issues block the submission and are returned instead
// of a shipment id.
func (s *draftService) Forward(ctx context.Context, draftID uuid.UUID) (*ForwardResult, error) {
	data, err := s.effectiveData(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if issues := xindus.ValidateForXindus(data); len(issues) > 0 {
		log.Printf("draftService.Forward: draft %s blocked by %d validation issue(s)", draftID, len(issues))
		return &ForwardResult{Issues: issues}, domain.ErrValidationBlocked
	}

	shipmentID, err := s.logistics.CreateShipment(ctx, xindus.BuildPayload(data))
	if err != nil {
		return nil, fmt.Errorf("forwarding draft %s: %w", draftID, err)
	}

	if err := s.drafts.UpdateStatus(ctx, draftID, domain.DraftStatusApproved); err != nil {
		log.Printf("draftService.Forward: draft %s forwarded as %s but status update failed: %v",
			draftID, shipmentID, err)
	}

	log.Printf("draftService.Forward: draft %s forwarded as shipment %s", draftID, shipmentID)
	return &ForwardResult{ShipmentID: shipmentID}, nil
}

func (s *draftService) effectiveData(ctx context.Context, draftID uuid.UUID) (*domain.Shipment, error) {
	s.mu.Lock()
	sess, ok := s.sessions[draftID]
	s.mu.Unlock()
	if ok {
		return sess.Effective(), nil
	}

	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return draft.Effective(), nil
}

// ExportCSV streams the filtered drafts as a BOM-prefixed CSV.
func (s *draftService) ExportCSV(ctx context.Context, filter port.DraftFilter, w io.Writer) error {
	drafts, _, err := s.drafts.List(ctx, filter)
	if err != nil {
		return err
	}

	if _, err := w.Write(export.BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	writer := export.NewWriter(w)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := writer.WriteDrafts(drafts); err != nil {
		return fmt.Errorf("writing CSV rows: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// ExportWorkbook renders one draft as an xlsx workbook.
func (s *draftService) ExportWorkbook(ctx context.Context, draftID uuid.UUID, w io.Writer) error {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return err
	}
	return export.WriteWorkbook(w, draft)
}
