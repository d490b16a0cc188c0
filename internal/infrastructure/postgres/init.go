package postgres

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cartfox/fulfillment-service/internal/config"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

func MustInitDB(cfg *config.FulfillmentConfig) *gorm.DB {
	dsn := cfg.FulfillmentDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.OrderModel{},
		&models.OrderLineItemModel{},
		&models.OrderStatusHistoryModel{},
		&models.InventoryIssueModel{},
		&models.InventoryModel{},
		&models.WebhookEventModel{},
	)

	return db
}
