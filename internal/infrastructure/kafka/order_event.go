package kafka

// OrderEvent is published to the order-events topic whenever fulfillment
// creates an order or an order changes status.
type OrderEvent struct {
	OrderID           string  `json:"order_id"`
	OrderNumber       string  `json:"order_number"`
	ExternalSessionID string  `json:"external_session_id"`
	Status            string  `json:"status"`
	PreviousStatus    string  `json:"previous_status,omitempty"`
	TotalAmount       float64 `json:"total_amount"`
	Currency          string  `json:"currency"`
}
