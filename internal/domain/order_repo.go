package domain

import "context"

type OrderRepository interface {
	// CreateOrder persists the order together with its line items and the
	// initial status history entry.
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	GetOrderBySessionID(ctx context.Context, externalSessionID string) (*Order, error)
	// UpdateOrderStatus sets the new status and appends the transition to
	// the order's history in one transaction.
	UpdateOrderStatus(ctx context.Context, orderID string, transition StatusTransition) error
	// ReplaceInventoryIssues overwrites the order's open inventory issues
	// after a retry pass resolved some or all of them.
	ReplaceInventoryIssues(ctx context.Context, orderID string, issues []InventoryIssue) error
	ListOrders(ctx context.Context, filters OrderFilters, page, limit int64) ([]*Order, int64, error)
}
