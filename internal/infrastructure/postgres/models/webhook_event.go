package models

import "time"

// WebhookEventModel is keyed by the gateway-assigned event id; the
// primary key is what makes first-writer-wins insertion atomic.
type WebhookEventModel struct {
	ExternalEventID string `gorm:"primaryKey"`
	EventType       string
	Processed       bool `gorm:"index"`
	Attempts        int64
	LastError       string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
