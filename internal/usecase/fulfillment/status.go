package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/kafka"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/statemachine"
)

// UpdateOrderStatus is the administrative status-change operation. The
// state machine validates the transition before anything is persisted;
// the accepted transition is what gets appended to the status history.
func (uc *DefaultFulfillmentUsecase) UpdateOrderStatus(ctx context.Context, input *fulfillmentdto.UpdateStatusInput) error {
	newStatus := domain.OrderStatus(input.NewStatus)
	switch newStatus {
	case domain.StatusPending, domain.StatusPendingInventory, domain.StatusCompleted,
		domain.StatusCancelled, domain.StatusRefunded:
	default:
		return status.Errorf(codes.InvalidArgument, "unknown order status: %s", input.NewStatus)
	}

	order, err := uc.OrderRepo.GetOrderByID(ctx, input.OrderID)
	if err != nil {
		return err
	}

	if !statemachine.IsValidTransition(order.Status, newStatus) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition,
			statemachine.TransitionErrorMessage(order.Status, newStatus))
	}

	transition := domain.StatusTransition{
		From:      order.Status,
		To:        newStatus,
		Timestamp: time.Now(),
		Actor:     input.Actor,
		Reason:    input.Reason,
	}
	if err := uc.OrderRepo.UpdateOrderStatus(ctx, order.ID, transition); err != nil {
		return err
	}

	uc.Metrics.OrderStatusChangesTotal.WithLabelValues(string(order.Status), string(newStatus)).Inc()

	if uc.Publisher != nil {
		go func(event kafka.OrderEvent) {
			if err := uc.Publisher.PublishOrderEvent(event); err != nil {
				slog.Error("failed to publish OrderEvent", "order_id", event.OrderID, "error", err.Error())
			}
		}(kafka.OrderEvent{
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			ExternalSessionID: order.ExternalSessionID,
			Status:            string(newStatus),
			PreviousStatus:    string(order.Status),
			TotalAmount:       order.TotalAmount,
			Currency:          order.Currency,
		})
	}

	return nil
}
