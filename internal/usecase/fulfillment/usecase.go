package fulfillment

import (
	"context"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/kafka"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/metrics"
	"github.com/cartfox/fulfillment-service/internal/usecase/inventory"
	"github.com/cartfox/fulfillment-service/internal/usecase/webhook"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
)

type FulfillmentUsecase interface {
	HandleCheckoutCompleted(ctx context.Context, input *fulfillmentdto.WebhookEventInput) (*fulfillmentdto.FulfillmentResult, error)
	UpdateOrderStatus(ctx context.Context, input *fulfillmentdto.UpdateStatusInput) error
	RetryPendingInventory(ctx context.Context) error

	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filters domain.OrderFilters, page, limit int64) ([]*domain.Order, int64, error)
}

type DefaultFulfillmentUsecase struct {
	OrderRepo     domain.OrderRepository
	WebhookLedger *webhook.Ledger
	Inventory     *inventory.Ledger
	Gateway       domain.PaymentGateway
	Catalog       domain.CatalogService
	Notifier      domain.OrderNotifier
	Publisher     *kafka.Publisher
	Metrics       *metrics.FulfillmentMetrics
}

func NewDefaultFulfillmentUsecase(
	orderRepo domain.OrderRepository,
	webhookLedger *webhook.Ledger,
	inventoryLedger *inventory.Ledger,
	gateway domain.PaymentGateway,
	catalog domain.CatalogService,
	notifier domain.OrderNotifier,
	publisher *kafka.Publisher,
	fulfillmentMetrics *metrics.FulfillmentMetrics) *DefaultFulfillmentUsecase {

	return &DefaultFulfillmentUsecase{
		OrderRepo:     orderRepo,
		WebhookLedger: webhookLedger,
		Inventory:     inventoryLedger,
		Gateway:       gateway,
		Catalog:       catalog,
		Notifier:      notifier,
		Publisher:     publisher,
		Metrics:       fulfillmentMetrics,
	}
}
