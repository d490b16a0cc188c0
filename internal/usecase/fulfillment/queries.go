package fulfillment

import (
	"context"

	"github.com/cartfox/fulfillment-service/internal/domain"
)

func (uc *DefaultFulfillmentUsecase) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByID(ctx, orderID)
}

func (uc *DefaultFulfillmentUsecase) GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderBySessionID(ctx, sessionID)
}

func (uc *DefaultFulfillmentUsecase) ListOrders(ctx context.Context, filters domain.OrderFilters, page, limit int64) ([]*domain.Order, int64, error) {
	return uc.OrderRepo.ListOrders(ctx, filters, page, limit)
}
