package domain

import "time"

type AdjustOperation string

const (
	OpIncrement AdjustOperation = "increment"
	OpDecrement AdjustOperation = "decrement"
	OpSet       AdjustOperation = "set"
)

// InventoryRecord holds stock counts for a single variant (or a product
// without variants). Version increases by one on every committed write and
// is the compare value for conditional updates.
type InventoryRecord struct {
	ID        string
	ProductID string
	VariantID string
	Available int64
	Reserved  int64
	Version   int64
	UpdatedAt time.Time
}

// VariantRef identifies one purchasable configuration. VariantID is empty
// for products without variants.
type VariantRef struct {
	ProductID string
	VariantID string
}
