package fulfillment

// Outcome codes reported back to the gateway in the webhook response.
const (
	CodeDuplicate         = "duplicate_event"
	CodeSessionNotFound   = "session_not_found"
	CodeIgnoredEventType  = "ignored_event_type"
	CodePartialInventory  = "partial_inventory"
)

// FulfillmentResult is the body of a 200 webhook response. Received is
// always true once the envelope was accepted; Processed reports whether
// this delivery performed the side effects.
type FulfillmentResult struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	OrderID   string `json:"orderId,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}
