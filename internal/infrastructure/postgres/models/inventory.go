package models

import "time"

// InventoryModel is the contended record; version is the compare value
// for conditional updates. Available is additionally guarded by a CHECK
// constraint in the schema migration.
type InventoryModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	ProductID string `gorm:"uniqueIndex:idx_inventory_variant,priority:1"`
	VariantID string `gorm:"uniqueIndex:idx_inventory_variant,priority:2"`
	Available int64
	Reserved  int64
	Version   int64
	UpdatedAt time.Time
}
