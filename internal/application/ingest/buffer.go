// Package ingest implements the asynchronous interaction-ingestion pipeline:
// an in-memory buffer that accepts events from the request path and writes
// them durably in batches, plus the per-event counter side effects.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/interaction"
	"github.com/wardrobe-hub/wardrobe-recs/internal/domain/shared"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/logger"
	"github.com/wardrobe-hub/wardrobe-recs/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTERACTION BUFFER
// ══════════════════════════════════════════════════════════════════════════════

// ErrBufferClosed is returned by Track after Close.
var ErrBufferClosed = errors.New("ingest: buffer closed")

const (
	// DefaultFlushThreshold is the pending-event count that triggers an
	// immediate flush.
	DefaultFlushThreshold = 100

	// DefaultFlushInterval is the ticker period for time-based flushes.
	DefaultFlushInterval = 10 * time.Second

	// popularityRecomputeEvery recomputes an item's popularity score on
	// every Nth tracked event, spreading the expensive aggregate evenly
	// over the ingest volume.
	popularityRecomputeEvery = 10

	// sideEffectTimeout bounds each asynchronous counter write.
	sideEffectTimeout = 5 * time.Second
)

// Config holds buffer settings.
type Config struct {
	FlushThreshold int
	FlushInterval  time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		FlushThreshold: DefaultFlushThreshold,
		FlushInterval:  DefaultFlushInterval,
	}
}

// counterStore is the slice of the catalog repository the buffer uses for
// per-event side effects.
type counterStore interface {
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	IncrementUseCount(ctx context.Context, id uuid.UUID) error
	RecomputePopularity(ctx context.Context, id uuid.UUID) error
}

// Buffer accepts interaction events and writes them durably in batches:
// whenever the pending count reaches the threshold, and on a fixed ticker
// otherwise. Flushes are mutually exclusive. A failed batch is re-queued at
// the head of the buffer in original order, so a transient store outage
// delays events instead of dropping them.
//
// Counter updates (view and use counts, periodic popularity recompute) run
// asynchronously per event and never block Track.
type Buffer struct {
	store    interaction.Store
	counters counterStore
	config   Config
	retrier  *retry.Retrier
	log      *logger.Logger

	mu      sync.Mutex
	pending []*interaction.Event
	tracked uint64
	closed  bool

	// flushMu serializes flushes so the ticker and the threshold trigger
	// never drain concurrently.
	flushMu sync.Mutex

	flushCh chan struct{}
	done    chan struct{}
	loopWG  sync.WaitGroup
	sideWG  sync.WaitGroup
}

// NewBuffer creates a Buffer and starts its flush loop.
func NewBuffer(store interaction.Store, counters counterStore, cfg Config, log *logger.Logger) *Buffer {
	if cfg.FlushThreshold <= 0 {
		cfg.FlushThreshold = DefaultFlushThreshold
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if log == nil {
		log = logger.Default()
	}

	b := &Buffer{
		store:    store,
		counters: counters,
		config:   cfg,
		retrier:  retry.DatabaseRetrier(),
		log:      log.With(logger.Component("interaction-buffer")),
		pending:  make([]*interaction.Event, 0, cfg.FlushThreshold),
		flushCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	b.loopWG.Add(1)
	go b.loop()

	return b
}

// Track buffers one event and kicks off its counter side effects. It returns
// immediately; durability comes with the next flush.
func (b *Buffer) Track(event *interaction.Event) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBufferClosed
	}
	b.pending = append(b.pending, event)
	b.tracked++
	size := len(b.pending)
	recompute := b.tracked%popularityRecomputeEvery == 0
	b.mu.Unlock()

	b.sideWG.Add(1)
	go b.applySideEffects(event, recompute)

	if size >= b.config.FlushThreshold {
		select {
		case b.flushCh <- struct{}{}:
		default: // a flush is already queued
		}
	}

	return nil
}

// Flush drains the buffer and writes the batch. Safe to call concurrently
// with the background loop.
func (b *Buffer) Flush(ctx context.Context) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	batch := b.pending
	b.pending = make([]*interaction.Event, 0, b.config.FlushThreshold)
	b.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	err := b.retrier.Do(ctx, func(ctx context.Context) error {
		insertErr := b.store.InsertBatch(ctx, batch)
		if shared.IsRetryable(insertErr) {
			return retry.Retryable(insertErr)
		}
		return insertErr
	})
	if err != nil {
		// Re-queue at the head so event order survives the outage.
		b.mu.Lock()
		b.pending = append(batch, b.pending...)
		b.mu.Unlock()

		b.log.Warn("batch flush failed, events re-queued",
			logger.BatchSize(len(batch)),
			logger.Err(err),
		)
		return shared.WrapError("ingest", "Flush", shared.ErrFlushFailed, "batch insert failed", err)
	}

	b.log.Debug("batch flushed", logger.BatchSize(len(batch)))
	return nil
}

// Pending returns the number of buffered events.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Close stops the flush loop, waits for in-flight side effects, and flushes
// whatever is still buffered. Further Track calls fail with ErrBufferClosed.
func (b *Buffer) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	b.loopWG.Wait()
	b.sideWG.Wait()

	return b.Flush(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────────────────

func (b *Buffer) loop() {
	defer b.loopWG.Done()

	ticker := time.NewTicker(b.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.flushInBackground()
		case <-b.flushCh:
			b.flushInBackground()
		}
	}
}

func (b *Buffer) flushInBackground() {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.FlushInterval)
	defer cancel()

	// Flush logs and re-queues on failure; nothing more to do here.
	_ = b.Flush(ctx)
}

// applySideEffects updates the denormalized counters for one event and, on
// the periodic trigger, recomputes the item's popularity score. Failures are
// logged and absorbed: counters are approximations, the event log is the
// source of truth.
func (b *Buffer) applySideEffects(event *interaction.Event, recompute bool) {
	defer b.sideWG.Done()

	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	var err error
	switch event.Type {
	case interaction.TypeView:
		err = b.counters.IncrementViewCount(ctx, event.ItemID)
	case interaction.TypeUse:
		err = b.counters.IncrementUseCount(ctx, event.ItemID)
	}
	if err != nil {
		b.log.Warn("counter update failed",
			logger.ItemID(event.ItemID.String()),
			logger.String("event_type", event.Type.String()),
			logger.Err(err),
		)
	}

	if recompute {
		if err := b.counters.RecomputePopularity(ctx, event.ItemID); err != nil {
			b.log.Warn("popularity recompute failed",
				logger.ItemID(event.ItemID.String()),
				logger.Err(err),
			)
		}
	}
}
