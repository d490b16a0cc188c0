package domain

import "time"

type OrderStatus string

const (
	StatusPending          OrderStatus = "pending"
	StatusPendingInventory OrderStatus = "pending_inventory"
	StatusCompleted        OrderStatus = "completed"
	StatusCancelled        OrderStatus = "cancelled"
	StatusRefunded         OrderStatus = "refunded"
)

// StatusTransition is one entry of an order's append-only status history.
// Entries are only ever appended, never edited or removed.
type StatusTransition struct {
	From      OrderStatus
	To        OrderStatus
	Timestamp time.Time
	Actor     string
	Reason    string
}

type LineItem struct {
	ProductID string
	VariantID string
	Quantity  int64
	UnitPrice float64
}

// InventoryIssue records a line item that could not be fully reserved
// during fulfillment.
type InventoryIssue struct {
	ProductID string
	VariantID string
	Requested int64
	Available int64
}

type Order struct {
	ID                string
	OrderNumber       string
	ExternalSessionID string
	Status            OrderStatus
	StatusHistory     []StatusTransition
	LineItems         []LineItem
	TotalAmount       float64
	OriginalAmount    float64
	Currency          string
	CouponCode        string
	CustomerEmail     string
	InventoryIssues   []InventoryIssue
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type OrderFilters struct {
	Statuses          []OrderStatus
	ExternalSessionID string
	DateFrom          time.Time
	DateTo            time.Time
}
