package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

type DefaultInventoryRepository struct {
	DB *gorm.DB
}

func NewDefaultInventoryRepository(db *gorm.DB) *DefaultInventoryRepository {
	return &DefaultInventoryRepository{DB: db}
}

func (r *DefaultInventoryRepository) GetByVariant(ctx context.Context, ref domain.VariantRef) (*domain.InventoryRecord, error) {
	var model models.InventoryModel
	err := r.DB.WithContext(ctx).
		First(&model, "product_id = ? AND variant_id = ?", ref.ProductID, ref.VariantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, err
	}

	return mappers.ToDomainInventory(&model), nil
}

func (r *DefaultInventoryRepository) CreateRecord(ctx context.Context, record *domain.InventoryRecord) error {
	model := mappers.ToGORMInventory(record)
	model.UpdatedAt = time.Now()
	return r.DB.WithContext(ctx).Create(model).Error
}

// UpdateConditional is the compare-and-swap: the row is written only if
// its version is still expectedVersion, and version moves forward by one
// in the same statement. RowsAffected == 0 means another writer won.
func (r *DefaultInventoryRepository) UpdateConditional(ctx context.Context, record *domain.InventoryRecord, expectedVersion int64) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.InventoryModel{}).
		Where("id = ? AND version = ?", record.ID, expectedVersion).
		Updates(map[string]interface{}{
			"available":  record.Available,
			"reserved":   record.Reserved,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}
