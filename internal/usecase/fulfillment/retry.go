package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cartfox/fulfillment-service/internal/domain"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/inventory"
)

const retryBatchSize = 100

// StartPendingInventoryWorker periodically retries orders parked in
// pending_inventory until their shortfall lines can be satisfied.
func (uc *DefaultFulfillmentUsecase) StartPendingInventoryWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := uc.RetryPendingInventory(ctx); err != nil {
				slog.Error("pending inventory retry pass failed", "error", err.Error())
			}
		}
	}
}

// RetryPendingInventory makes one pass over pending_inventory orders and
// attempts the outstanding decrements. A line that succeeds is removed
// from the order's issues so it is never decremented twice; when no
// issues remain the order completes through the state machine.
func (uc *DefaultFulfillmentUsecase) RetryPendingInventory(ctx context.Context) error {
	filters := domain.OrderFilters{Statuses: []domain.OrderStatus{domain.StatusPendingInventory}}
	orders, _, err := uc.OrderRepo.ListOrders(ctx, filters, 1, retryBatchSize)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if err := uc.retryOrderInventory(ctx, order); err != nil {
			slog.Error("failed to retry order inventory", "order_id", order.ID, "error", err.Error())
		}
	}
	return nil
}

func (uc *DefaultFulfillmentUsecase) retryOrderInventory(ctx context.Context, order *domain.Order) error {
	var remaining []domain.InventoryIssue
	for _, issue := range order.InventoryIssues {
		ref := domain.VariantRef{ProductID: issue.ProductID, VariantID: issue.VariantID}
		_, err := uc.Inventory.Adjust(ctx, ref, -issue.Requested, domain.OpDecrement, inventory.DefaultMaxRetries)
		if errors.Is(err, domain.ErrInsufficientStock) {
			available, availErr := uc.Inventory.GetAvailable(ctx, ref)
			if availErr != nil {
				available = issue.Available
			}
			issue.Available = available
			remaining = append(remaining, issue)
			continue
		}
		if err != nil {
			// Transient failure; keep the issue for the next pass.
			remaining = append(remaining, issue)
			slog.Warn("inventory retry failed", "order_id", order.ID, "product_id", issue.ProductID, "error", err.Error())
		}
	}

	// If persisting the shrunken issue list fails after a decrement
	// succeeded, the next pass would decrement that line again. Same
	// at-least-once limitation as fulfillment itself; see DESIGN.md.
	if err := uc.OrderRepo.ReplaceInventoryIssues(ctx, order.ID, remaining); err != nil {
		return err
	}
	if len(remaining) > 0 {
		return nil
	}

	return uc.UpdateOrderStatus(ctx, &fulfillmentdto.UpdateStatusInput{
		OrderID:   order.ID,
		NewStatus: string(domain.StatusCompleted),
		Actor:     "system",
		Reason:    "inventory replenished",
	})
}
