package correction

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

// Session holds one draft's canonical data plus an overlay of pending edits.
// All mutation happens on a working copy; the canonical record only advances
// when the Drafts Service confirms a flush. A session is safe for concurrent
// use by the handlers and the async duty-lookup pass.
type Session struct {
	svc port.DraftsService

	mu      sync.Mutex
	draft   *domain.Draft
	working *domain.Shipment
	pending []domain.Correction

	boxesReplaced    bool
	productsReplaced bool
	origBoxes        []domain.ShipmentBox
	origProducts     []domain.ProductDetail
}

// NewSession opens an editing session over a draft's effective data.
func NewSession(draft *domain.Draft, svc port.DraftsService) *Session {
	return &Session{
		svc:     svc,
		draft:   draft,
		working: draft.Effective().Clone(),
	}
}

// DraftID returns the draft this session edits.
func (s *Session) DraftID() uuid.UUID {
	return s.draft.ID
}

// Draft returns the session's last-confirmed draft record.
func (s *Session) Draft() *domain.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Effective returns a copy of the draft data with all staged edits applied.
func (s *Session) Effective() *domain.Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// EffectiveValue resolves a field path against the staged view.
func (s *Session) EffectiveValue(path string) (interface{}, error) {
	lens, err := LensFor(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lens.Get(s.working), nil
}

// Stage records a single field correction. A value equal to the currently
// effective value is a no-op and leaves the pending set unchanged. Staging
// over an already-pending path replaces it last-write-wins while keeping the
// old value the first edit was computed against; staging the path back to
// that old value cancels the pending correction entirely, so a flush never
// carries edits that net out to nothing.
func (s *Session) Stage(path string, value interface{}) error {
	lens, err := LensFor(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := lens.Get(s.working)
	if err := lens.Set(s.working, value); err != nil {
		return err
	}
	now := lens.Get(s.working)
	if reflect.DeepEqual(old, now) {
		return nil
	}

	for i := range s.pending {
		if s.pending[i].FieldPath == path {
			if reflect.DeepEqual(s.pending[i].OldValue, now) {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				return nil
			}
			s.pending[i].NewValue = now
			return nil
		}
	}
	s.pending = append(s.pending, domain.Correction{FieldPath: path, OldValue: old, NewValue: now})
	return nil
}

// StageBoxes replaces the whole box list. Only the most recent replacement is
// flushed; the synthetic correction's old value is the pre-edit list.
func (s *Session) StageBoxes(boxes []domain.ShipmentBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stageBoxesLocked(boxes)
}

// StageProducts replaces the whole customs product list.
func (s *Session) StageProducts(products []domain.ProductDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stageProductsLocked(products)
}

// ReplaceCollections stages both collections in one step, as produced by a
// propagation pass. A nil slice leaves that collection untouched.
func (s *Session) ReplaceCollections(boxes []domain.ShipmentBox, products []domain.ProductDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if boxes != nil {
		s.stageBoxesLocked(boxes)
	}
	if products != nil {
		s.stageProductsLocked(products)
	}
}

func (s *Session) stageBoxesLocked(boxes []domain.ShipmentBox) {
	if !s.boxesReplaced {
		s.origBoxes = domain.CloneBoxes(s.working.Boxes)
		s.boxesReplaced = true
	}
	s.working.Boxes = domain.CloneBoxes(boxes)
}

func (s *Session) stageProductsLocked(products []domain.ProductDetail) {
	if !s.productsReplaced {
		s.origProducts = domain.CloneProducts(s.working.Products)
		s.productsReplaced = true
	}
	s.working.Products = domain.CloneProducts(products)
}

// Collections returns cloned copies of the staged box and product lists for
// propagation computations.
func (s *Session) Collections() ([]domain.ShipmentBox, []domain.ProductDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneBoxes(s.working.Boxes), domain.CloneProducts(s.working.Products)
}

// PendingCount returns the number of corrections the next flush would send.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	if s.boxesReplaced {
		n++
	}
	if s.productsReplaced {
		n++
	}
	return n
}

// buildPatchLocked combines staged field corrections with one synthetic
// correction per replaced collection.
func (s *Session) buildPatchLocked() []domain.Correction {
	patch := make([]domain.Correction, 0, len(s.pending)+2)
	patch = append(patch, s.pending...)
	if s.boxesReplaced {
		patch = append(patch, domain.Correction{
			FieldPath: PathBoxes,
			OldValue:  s.origBoxes,
			NewValue:  s.working.Boxes,
		})
	}
	if s.productsReplaced {
		patch = append(patch, domain.Correction{
			FieldPath: PathProducts,
			OldValue:  s.origProducts,
			NewValue:  s.working.Products,
		})
	}
	return patch
}

// Flush submits all staged corrections as one combined patch and adopts the
// returned draft as the new canonical view. On a revision conflict the
// pending state is kept so the operator can re-pull and re-apply. A flush
// with nothing pending is a no-op.
func (s *Session) Flush(ctx context.Context) (*domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch := s.buildPatchLocked()
	if len(patch) == 0 {
		return s.draft, nil
	}

	updated, err := s.svc.ApplyCorrections(ctx, s.draft.ID, s.draft.Revision, patch)
	if err != nil {
		return nil, fmt.Errorf("applying correction patch: %w", err)
	}

	log.Printf("correction.Session: flushed %d corrections for draft %s (revision %d -> %d)",
		len(patch), s.draft.ID, s.draft.Revision, updated.Revision)

	s.draft = updated
	s.working = updated.Effective().Clone()
	s.clearLocked()
	return updated, nil
}

// Discard drops all pending corrections and collection replacements without
// submitting them.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = s.draft.Effective().Clone()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.pending = nil
	s.boxesReplaced = false
	s.productsReplaced = false
	s.origBoxes = nil
	s.origProducts = nil
}
