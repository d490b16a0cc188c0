package domain

import "context"

type WebhookEventRepository interface {
	// CreateIfAbsent inserts a fresh record for the event id unless one
	// already exists. The insert must be atomic across concurrent callers
	// (unique constraint, not read-then-write): exactly one caller gets
	// isNew == true for a given id.
	CreateIfAbsent(ctx context.Context, record *WebhookEventRecord) (isNew bool, existing *WebhookEventRecord, err error)
	GetByEventID(ctx context.Context, externalEventID string) (*WebhookEventRecord, error)
	// RecordAttempt atomically increments attempts, flips processed on
	// success and stores the last error message on failure.
	RecordAttempt(ctx context.Context, externalEventID string, success bool, lastError string) error
}
