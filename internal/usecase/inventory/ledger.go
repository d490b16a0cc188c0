package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/metrics"
)

// DefaultMaxRetries bounds the optimistic-concurrency loop. Contention on
// a single variant is short-lived, so a losing writer re-reads and wins
// within a couple of rounds in practice.
const DefaultMaxRetries = 3

type Ledger struct {
	InventoryRepo domain.InventoryRepository
	Metrics       *metrics.FulfillmentMetrics
}

func NewLedger(inventoryRepo domain.InventoryRepository, m *metrics.FulfillmentMetrics) *Ledger {
	return &Ledger{
		InventoryRepo: inventoryRepo,
		Metrics:       m,
	}
}

// Adjust applies delta to the variant's available count using a bounded
// compare-and-swap loop. A decrement that would drive available below
// zero fails with ErrInsufficientStock and changes nothing. Losing the
// version race maxRetries times in a row fails with
// ErrConcurrencyExhausted; the caller must not assume the adjustment
// happened.
func (l *Ledger) Adjust(ctx context.Context, ref domain.VariantRef, delta int64, op domain.AdjustOperation, maxRetries int) (*domain.InventoryRecord, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		record, err := l.InventoryRepo.GetByVariant(ctx, ref)
		if err != nil {
			return nil, err
		}

		candidate, err := applyOperation(record.Available, delta, op)
		if err != nil {
			return nil, fmt.Errorf("adjust %s/%s: %w (requested %d, available %d)",
				ref.ProductID, ref.VariantID, err, delta, record.Available)
		}

		updated := *record
		updated.Available = candidate

		ok, err := l.InventoryRepo.UpdateConditional(ctx, &updated, record.Version)
		if err != nil {
			return nil, err
		}
		if ok {
			updated.Version = record.Version + 1
			return &updated, nil
		}

		// Another writer committed first; re-read and recompute.
		l.Metrics.InventoryConflictRetries.Inc()
		slog.Debug("inventory version conflict, retrying",
			"product_id", ref.ProductID,
			"variant_id", ref.VariantID,
			"attempt", attempt+1,
		)
	}

	l.Metrics.InventoryRetriesExhausted.Inc()
	return nil, fmt.Errorf("adjust %s/%s after %d attempts: %w",
		ref.ProductID, ref.VariantID, maxRetries, domain.ErrConcurrencyExhausted)
}

// Reserve places a provisional hold against the variant by incrementing
// the reserved counter. It never touches available, so a failed
// reservation cannot corrupt on-hand counts.
func (l *Ledger) Reserve(ctx context.Context, ref domain.VariantRef, quantity int64, maxRetries int) (*domain.InventoryRecord, error) {
	return l.adjustReserved(ctx, ref, quantity, maxRetries)
}

// Release returns a previously reserved quantity.
func (l *Ledger) Release(ctx context.Context, ref domain.VariantRef, quantity int64, maxRetries int) (*domain.InventoryRecord, error) {
	return l.adjustReserved(ctx, ref, -quantity, maxRetries)
}

func (l *Ledger) adjustReserved(ctx context.Context, ref domain.VariantRef, delta int64, maxRetries int) (*domain.InventoryRecord, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		record, err := l.InventoryRepo.GetByVariant(ctx, ref)
		if err != nil {
			return nil, err
		}

		candidate := record.Reserved + delta
		if candidate < 0 {
			return nil, fmt.Errorf("release %s/%s below zero: %w",
				ref.ProductID, ref.VariantID, domain.ErrInsufficientStock)
		}

		updated := *record
		updated.Reserved = candidate

		ok, err := l.InventoryRepo.UpdateConditional(ctx, &updated, record.Version)
		if err != nil {
			return nil, err
		}
		if ok {
			updated.Version = record.Version + 1
			return &updated, nil
		}

		l.Metrics.InventoryConflictRetries.Inc()
	}

	l.Metrics.InventoryRetriesExhausted.Inc()
	return nil, fmt.Errorf("reserve %s/%s after %d attempts: %w",
		ref.ProductID, ref.VariantID, maxRetries, domain.ErrConcurrencyExhausted)
}

// GetAvailable is a plain read, true only at the time of the read.
func (l *Ledger) GetAvailable(ctx context.Context, ref domain.VariantRef) (int64, error) {
	record, err := l.InventoryRepo.GetByVariant(ctx, ref)
	if err != nil {
		return 0, err
	}
	return record.Available, nil
}

// CheckAvailability reports whether quantity could be satisfied right
// now. Callers must re-validate at commit time via Adjust.
func (l *Ledger) CheckAvailability(ctx context.Context, ref domain.VariantRef, quantity int64) (bool, error) {
	available, err := l.GetAvailable(ctx, ref)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

// applyOperation computes the candidate available count. The operation
// determines direction; delta's sign is normalized so callers may pass
// either +quantity or -quantity for a decrement.
func applyOperation(current, delta int64, op domain.AdjustOperation) (int64, error) {
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	switch op {
	case domain.OpIncrement:
		return current + magnitude, nil
	case domain.OpDecrement:
		if current-magnitude < 0 {
			return 0, domain.ErrInsufficientStock
		}
		return current - magnitude, nil
	case domain.OpSet:
		if delta < 0 {
			return 0, fmt.Errorf("cannot set available to %d: %w", delta, domain.ErrInsufficientStock)
		}
		return delta, nil
	default:
		return 0, fmt.Errorf("unknown adjust operation: %s", op)
	}
}
