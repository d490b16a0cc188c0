package mappers

import (
	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMInventory(record *domain.InventoryRecord) *models.InventoryModel {
	return &models.InventoryModel{
		ID:        record.ID,
		ProductID: record.ProductID,
		VariantID: record.VariantID,
		Available: record.Available,
		Reserved:  record.Reserved,
		Version:   record.Version,
		UpdatedAt: record.UpdatedAt,
	}
}

func ToDomainInventory(model *models.InventoryModel) *domain.InventoryRecord {
	return &domain.InventoryRecord{
		ID:        model.ID,
		ProductID: model.ProductID,
		VariantID: model.VariantID,
		Available: model.Available,
		Reserved:  model.Reserved,
		Version:   model.Version,
		UpdatedAt: model.UpdatedAt,
	}
}
