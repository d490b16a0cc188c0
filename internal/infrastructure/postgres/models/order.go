package models

import "time"

type OrderModel struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	OrderNumber       string `gorm:"uniqueIndex:idx_order_number"`
	ExternalSessionID string `gorm:"uniqueIndex:idx_external_session"`
	Status            string `gorm:"index:idx_order_status"`
	TotalAmount       float64
	OriginalAmount    float64
	Currency          string
	CouponCode        string
	CustomerEmail     string
	LineItems         []OrderLineItemModel      `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:RESTRICT"`
	StatusHistory     []OrderStatusHistoryModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:RESTRICT"`
	InventoryIssues   []InventoryIssueModel     `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:RESTRICT"`
	CreatedAt         time.Time                 `gorm:"index:idx_order_created_at"`
	UpdatedAt         time.Time
}

type OrderLineItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"type:uuid;index"`
	Position  int
	ProductID string
	VariantID string
	Quantity  int64
	UnitPrice float64
}

// OrderStatusHistoryModel rows are append-only: inserted on every
// accepted transition, never updated or deleted.
type OrderStatusHistoryModel struct {
	ID         uint   `gorm:"primaryKey"`
	OrderID    string `gorm:"type:uuid;index"`
	FromStatus string
	ToStatus   string
	Actor      string
	Reason     string
	CreatedAt  time.Time
}

type InventoryIssueModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"type:uuid;index"`
	ProductID string
	VariantID string
	Requested int64
	Available int64
}
