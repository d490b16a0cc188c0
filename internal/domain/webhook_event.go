package domain

import "time"

// WebhookEventRecord is the durable dedup record for one externally
// delivered event id. Processed flips false -> true exactly once.
type WebhookEventRecord struct {
	ExternalEventID string
	EventType       string
	Processed       bool
	Attempts        int64
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Event is the verified envelope handed to the fulfillment core by the
// gateway client after signature verification.
type Event struct {
	ExternalEventID string
	EventType       string
	SessionRef      string
}
