package webhook

import (
	"context"
	"fmt"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

// Ledger is the durable dedup record book for externally delivered
// events. It performs no retries of its own; storage failures propagate
// to the caller and ultimately to the gateway's redelivery.
type Ledger struct {
	EventRepo domain.WebhookEventRepository
}

func NewLedger(eventRepo domain.WebhookEventRepository) *Ledger {
	return &Ledger{EventRepo: eventRepo}
}

// RecordSeen registers the event id on first sight. Exactly one of any
// set of concurrent callers for the same id observes isNew == true; the
// rest get the existing record untouched.
func (l *Ledger) RecordSeen(ctx context.Context, externalEventID, eventType string) (bool, *domain.WebhookEventRecord, error) {
	record := &domain.WebhookEventRecord{
		ExternalEventID: externalEventID,
		EventType:       eventType,
	}

	isNew, existing, err := l.EventRepo.CreateIfAbsent(ctx, record)
	if err != nil {
		return false, nil, fmt.Errorf("record webhook event %s: %w", externalEventID, err)
	}
	if isNew {
		return true, record, nil
	}
	return false, existing, nil
}

// MarkAttempt accounts one processing attempt. Processed is set only on
// success and never reverts; any error message is kept for operators
// inspecting redelivery history, including the terminal reason of a
// successfully closed attempt.
func (l *Ledger) MarkAttempt(ctx context.Context, externalEventID string, success bool, attemptErr error) error {
	lastError := ""
	if attemptErr != nil {
		lastError = attemptErr.Error()
	}
	if err := l.EventRepo.RecordAttempt(ctx, externalEventID, success, lastError); err != nil {
		return fmt.Errorf("mark webhook attempt %s: %w", externalEventID, err)
	}
	return nil
}

func (l *Ledger) IsProcessed(ctx context.Context, externalEventID string) (bool, error) {
	record, err := l.EventRepo.GetByEventID(ctx, externalEventID)
	if err != nil {
		return false, err
	}
	return record.Processed, nil
}
