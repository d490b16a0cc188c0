package domain

import "context"

type InventoryRepository interface {
	GetByVariant(ctx context.Context, ref VariantRef) (*InventoryRecord, error)
	CreateRecord(ctx context.Context, record *InventoryRecord) error
	// UpdateConditional writes available/reserved only if the stored
	// version still equals expectedVersion, incrementing version on
	// success. Returns false when another writer won the race.
	UpdateConditional(ctx context.Context, record *InventoryRecord, expectedVersion int64) (bool, error)
}
