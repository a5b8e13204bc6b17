// Package tracker manages the lifecycle of one background extraction batch:
// it observes the pipeline's push channel, falls back to interval polling on
// channel failure, reconciles state on resume, and announces the terminal
// outcome exactly once.
package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"shipdraft/internal/domain"
	"shipdraft/internal/port"
)

// State is the tracker's observation state.
type State string

const (
	StateIdle      State = "idle"
	StateObserving State = "observing"
	StatePolling   State = "polling"
	StateTerminal  State = "terminal"
)

// Config holds tracker timing settings.
type Config struct {
	// PollInterval is the fallback polling cadence.
	PollInterval time.Duration
	// BackoffCap bounds the exponential backoff applied after failed polls.
	BackoffCap time.Duration
	// MaxPollFailures is the consecutive transport-failure ceiling; once
	// reached the tracker gives up and emits a stalled terminal snapshot.
	MaxPollFailures int
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 30 * time.Second
	}
	if c.MaxPollFailures <= 0 {
		c.MaxPollFailures = 10
	}
	return c
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMissingBatchPolicy replaces the disappeared-batch policy.
func WithMissingBatchPolicy(p MissingBatchPolicy) Option {
	return func(t *Tracker) { t.missing = p }
}

// WithTerminalFunc sets the side effect fired on the first terminal snapshot.
// It fires exactly once per tracker no matter how many snapshots are
// delivered or how many times observation is re-attached.
func WithTerminalFunc(fn func(domain.BatchSnapshot)) Option {
	return func(t *Tracker) { t.onTerminal = fn }
}

// Tracker tracks one batch. Construct one per batch id and pass it
// explicitly; there is no package-level registry.
type Tracker struct {
	batchID    uuid.UUID
	pipeline   port.ExtractionPipeline
	cfg        Config
	missing    MissingBatchPolicy
	onTerminal func(domain.BatchSnapshot)

	terminalOnce sync.Once

	mu        sync.Mutex
	state     State
	lastIndex int
	last      domain.BatchSnapshot
	cancel    context.CancelFunc
}

// New creates a tracker for one batch.
func New(batchID uuid.UUID, pipeline port.ExtractionPipeline, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		batchID:   batchID,
		pipeline:  pipeline,
		cfg:       cfg.withDefaults(),
		missing:   AssumeComplete,
		state:     StateIdle,
		lastIndex: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BatchID returns the tracked batch id.
func (t *Tracker) BatchID() uuid.UUID { return t.batchID }

// State returns the current observation state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Observe begins reporting progress snapshots until a terminal snapshot is
// delivered, after which the returned channel closes. Calling Observe while
// an observation is running cancels the running one first (a poll is never
// left behind when a fresh channel is attached). Observing an already
// terminal batch immediately replays the terminal snapshot.
func (t *Tracker) Observe(ctx context.Context) <-chan domain.BatchSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateTerminal {
		out := make(chan domain.BatchSnapshot, 1)
		out <- t.last
		close(out)
		return out
	}

	if t.cancel != nil {
		t.cancel()
	}
	obsCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.state = StateObserving

	out := make(chan domain.BatchSnapshot, 16)
	go t.run(obsCtx, out)
	return out
}

// Resume re-attaches observation to an already-running batch, e.g. after the
// caller reloaded. It is identical to Observe; the terminal side effect is
// still fired at most once.
func (t *Tracker) Resume(ctx context.Context) <-chan domain.BatchSnapshot {
	return t.Observe(ctx)
}

func (t *Tracker) run(ctx context.Context, out chan<- domain.BatchSnapshot) {
	defer close(out)

	events, err := t.pipeline.Events(ctx, t.batchID)
	if err != nil {
		log.Printf("tracker: batch %s channel unavailable (%v), falling back to polling", t.batchID, err)
		t.poll(ctx, out)
		return
	}

	for snap := range events {
		if !t.deliver(ctx, out, snap) {
			return
		}
		if snap.Terminal() {
			t.finish(snap)
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	// Channel closed without a terminal snapshot: channel-level failure, not
	// a pipeline error. Fall back to polling.
	log.Printf("tracker: batch %s channel lost, falling back to polling", t.batchID)
	t.poll(ctx, out)
}

func (t *Tracker) poll(ctx context.Context, out chan<- domain.BatchSnapshot) {
	t.setState(StatePolling)

	interval := t.cfg.PollInterval
	failures := 0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			batches, err := t.pipeline.ActiveBatches(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				log.Printf("tracker: batch %s poll failed (%d/%d): %v",
					t.batchID, failures, t.cfg.MaxPollFailures, err)
				if failures >= t.cfg.MaxPollFailures {
					snap := domain.BatchSnapshot{
						BatchID:      t.batchID,
						Step:         domain.BatchStepError,
						ErrorMessage: domain.ErrTrackingStalled.Error(),
						Inferred:     true,
					}
					t.deliver(ctx, out, snap)
					t.finish(snap)
					return
				}
				interval = interval * 2
				if interval > t.cfg.BackoffCap {
					interval = t.cfg.BackoffCap
				}
				ticker.Reset(interval)
				continue
			}

			failures = 0
			if interval != t.cfg.PollInterval {
				interval = t.cfg.PollInterval
				ticker.Reset(interval)
			}

			var found *domain.Batch
			for i := range batches {
				if batches[i].ID == t.batchID {
					found = &batches[i]
					break
				}
			}

			if found == nil {
				// The backend drops terminal batches from the active set.
				snap := t.missing(t.lastSnapshot())
				snap.BatchID = t.batchID
				t.deliver(ctx, out, snap)
				t.finish(snap)
				return
			}

			snap := snapshotFromBatch(found)
			if !t.deliver(ctx, out, snap) {
				return
			}
			if snap.Terminal() {
				t.finish(snap)
				return
			}
		}
	}
}

// deliver applies the monotonic step filter and sends the snapshot. A
// regression to an earlier step is dropped; delivery returns false only when
// the context is done.
func (t *Tracker) deliver(ctx context.Context, out chan<- domain.BatchSnapshot, snap domain.BatchSnapshot) bool {
	t.mu.Lock()
	idx := domain.StepIndex(snap.Step)
	if idx >= 0 && idx < t.lastIndex {
		t.mu.Unlock()
		return true
	}
	if idx > t.lastIndex {
		t.lastIndex = idx
	}
	t.last = snap
	t.mu.Unlock()

	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func (t *Tracker) finish(snap domain.BatchSnapshot) {
	t.mu.Lock()
	t.state = StateTerminal
	t.last = snap
	t.mu.Unlock()

	t.terminalOnce.Do(func() {
		if t.onTerminal != nil {
			t.onTerminal(snap)
		}
	})
}

func (t *Tracker) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Tracker) lastSnapshot() domain.BatchSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// snapshotFromBatch derives the caller-facing snapshot shape from a batch's
// persisted step and progress, so polling reports look the same as channel
// reports.
func snapshotFromBatch(b *domain.Batch) domain.BatchSnapshot {
	return domain.BatchSnapshot{
		BatchID:        b.ID,
		Step:           b.CurrentStep,
		Completed:      b.StepProgress.Completed,
		Total:          b.StepProgress.Total,
		File:           b.StepProgress.File,
		ShipmentsFound: b.StepProgress.ShipmentsFound,
		ErrorMessage:   b.ErrorMessage,
	}
}
