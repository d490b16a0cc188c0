package fulfillment

// WebhookEventInput is the verified envelope handed in by the delivery
// layer. Signature verification already happened upstream.
type WebhookEventInput struct {
	ExternalEventID string
	EventType       string
	SessionRef      string
}

type UpdateStatusInput struct {
	OrderID   string
	NewStatus string
	Actor     string
	Reason    string
}
