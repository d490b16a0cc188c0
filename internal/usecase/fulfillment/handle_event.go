package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/jaevor/go-nanoid"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/kafka"
	fulfillmentdto "github.com/cartfox/fulfillment-service/internal/usecase/dto/fulfillment"
	"github.com/cartfox/fulfillment-service/internal/usecase/inventory"
	"github.com/cartfox/fulfillment-service/internal/usecase/statemachine"
)

// HandleCheckoutCompleted turns one verified payment-completion event
// into exactly one committed order. Deliveries of an already-processed
// event short-circuit on the idempotency ledger; a known but unprocessed
// event is a redelivery after a failed attempt and is re-run. A missing
// session is terminal; inventory shortfall degrades the order to
// pending_inventory instead of failing. Only infrastructure errors are
// returned, signalling the gateway to redeliver.
func (uc *DefaultFulfillmentUsecase) HandleCheckoutCompleted(ctx context.Context, input *fulfillmentdto.WebhookEventInput) (*fulfillmentdto.FulfillmentResult, error) {
	start := time.Now()

	isNew, existing, err := uc.WebhookLedger.RecordSeen(ctx, input.ExternalEventID, input.EventType)
	if err != nil {
		return nil, err
	}
	if !isNew {
		if existing.Processed {
			uc.Metrics.WebhooksDuplicateTotal.Inc()
			return &fulfillmentdto.FulfillmentResult{
				Received:  true,
				Processed: false,
				Code:      fulfillmentdto.CodeDuplicate,
			}, nil
		}

		// The record exists but no attempt completed it, so an earlier
		// delivery failed mid-flight. If the failure was after the order
		// commit, close the dedup record instead of fulfilling twice; the
		// unique external_session_id index catches the remaining race
		// where another re-attempt commits between this check and ours.
		order, err := uc.OrderRepo.GetOrderBySessionID(ctx, input.SessionRef)
		if err == nil {
			if markErr := uc.WebhookLedger.MarkAttempt(ctx, input.ExternalEventID, true, nil); markErr != nil {
				slog.Error("failed to mark webhook attempt", "event_id", input.ExternalEventID, "error", markErr.Error())
			}
			uc.Metrics.WebhooksDuplicateTotal.Inc()
			return &fulfillmentdto.FulfillmentResult{
				Received:  true,
				Processed: false,
				OrderID:   order.ID,
				Code:      fulfillmentdto.CodeDuplicate,
			}, nil
		}
		if !errors.Is(err, domain.ErrOrderNotFound) {
			uc.failAttempt(ctx, input, err, start)
			return nil, err
		}
	}
	uc.Metrics.WebhooksReceivedTotal.WithLabelValues(input.EventType).Inc()

	session, err := uc.Gateway.RetrieveSession(ctx, input.SessionRef)
	if errors.Is(err, domain.ErrSessionNotFound) {
		// Terminal: mark the attempt successful so the gateway does not
		// loop forever redelivering an event for a session that will
		// never exist.
		if markErr := uc.WebhookLedger.MarkAttempt(ctx, input.ExternalEventID, true, err); markErr != nil {
			slog.Error("failed to mark webhook attempt", "event_id", input.ExternalEventID, "error", markErr.Error())
		}
		uc.observeDuration(start, "session_not_found")
		return &fulfillmentdto.FulfillmentResult{
			Received:  true,
			Processed: false,
			Error:     "Session not found",
			Code:      fulfillmentdto.CodeSessionNotFound,
		}, nil
	}
	if err != nil {
		uc.failAttempt(ctx, input, err, start)
		return nil, err
	}

	lineItems := uc.resolveLineItems(ctx, session)

	// Decrement stock line by line. Lines that succeed before a later
	// line fails are not rolled back; a stock shortfall is recorded as an
	// inventory issue while any other failure aborts the attempt.
	var issues []domain.InventoryIssue
	for _, item := range lineItems {
		ref := domain.VariantRef{ProductID: item.ProductID, VariantID: item.VariantID}
		_, err := uc.Inventory.Adjust(ctx, ref, -item.Quantity, domain.OpDecrement, inventory.DefaultMaxRetries)
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.Metrics.OversellRejectionsTotal.Inc()
			available, availErr := uc.Inventory.GetAvailable(ctx, ref)
			if availErr != nil {
				uc.failAttempt(ctx, input, availErr, start)
				return nil, availErr
			}
			issues = append(issues, domain.InventoryIssue{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Requested: item.Quantity,
				Available: available,
			})
			continue
		}
		if err != nil {
			uc.failAttempt(ctx, input, err, start)
			return nil, err
		}
	}

	order, err := uc.buildOrder(session, lineItems, issues)
	if err != nil {
		uc.failAttempt(ctx, input, err, start)
		return nil, err
	}

	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		uc.failAttempt(ctx, input, err, start)
		return nil, err
	}

	if err := uc.WebhookLedger.MarkAttempt(ctx, input.ExternalEventID, true, nil); err != nil {
		// The order is committed; a redelivery will short-circuit on the
		// dedup record, so this is log-only.
		slog.Error("failed to mark webhook attempt after commit", "event_id", input.ExternalEventID, "error", err.Error())
	}

	uc.sendOrderNotifications(order)
	uc.recordOrderCreatedMetrics(order)

	result := &fulfillmentdto.FulfillmentResult{
		Received:  true,
		Processed: true,
		OrderID:   order.ID,
	}
	outcome := "completed"
	if order.Status == domain.StatusPendingInventory {
		result.Code = fulfillmentdto.CodePartialInventory
		outcome = "partial_inventory"
	}
	uc.observeDuration(start, outcome)

	return result, nil
}

// resolveLineItems reconciles session line items against the catalog.
// Catalog failures fall back to the session's own price.
func (uc *DefaultFulfillmentUsecase) resolveLineItems(ctx context.Context, session *domain.CheckoutSession) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(session.LineItems))
	for _, li := range session.LineItems {
		item := domain.LineItem{
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		}
		if item.UnitPrice == 0 && uc.Catalog != nil {
			info, err := uc.Catalog.ResolveVariant(ctx, domain.VariantRef{ProductID: li.ProductID, VariantID: li.VariantID})
			if err != nil {
				slog.Warn("catalog lookup failed, keeping session price",
					"product_id", li.ProductID,
					"variant_id", li.VariantID,
					"error", err.Error(),
				)
			} else {
				item.UnitPrice = info.UnitPrice
			}
		}
		items = append(items, item)
	}
	return items
}

func (uc *DefaultFulfillmentUsecase) buildOrder(session *domain.CheckoutSession, lineItems []domain.LineItem, issues []domain.InventoryIssue) (*domain.Order, error) {
	generateNumber, err := gonanoid.CustomASCII("0123456789ABCDEFGHJKMNPQRSTVWXYZ", 12)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := domain.StatusCompleted
	reason := "checkout completed"
	if len(issues) > 0 {
		status = domain.StatusPendingInventory
		reason = "insufficient inventory for one or more line items"
	} else if !statemachine.IsValidTransition(domain.StatusPending, status) {
		return nil, domain.ErrInvalidTransition
	}

	return &domain.Order{
		ID:                uuid.New().String(),
		OrderNumber:       generateNumber(),
		ExternalSessionID: session.SessionRef,
		Status:            status,
		StatusHistory: []domain.StatusTransition{{
			From:      domain.StatusPending,
			To:        status,
			Timestamp: now,
			Actor:     "system",
			Reason:    reason,
		}},
		LineItems:       lineItems,
		TotalAmount:     session.AmountTotal,
		OriginalAmount:  session.OriginalAmount,
		Currency:        session.Currency,
		CouponCode:      session.CouponCode,
		CustomerEmail:   session.CustomerEmail,
		InventoryIssues: issues,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (uc *DefaultFulfillmentUsecase) sendOrderNotifications(order *domain.Order) {
	if uc.Publisher != nil {
		go func(event kafka.OrderEvent) {
			if err := uc.Publisher.PublishOrderEvent(event); err != nil {
				slog.Error("failed to publish OrderEvent", "order_id", event.OrderID, "error", err.Error())
			}
		}(kafka.OrderEvent{
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			ExternalSessionID: order.ExternalSessionID,
			Status:            string(order.Status),
			TotalAmount:       order.TotalAmount,
			Currency:          order.Currency,
		})
	}

	if uc.Notifier != nil {
		uc.Notifier.NotifyOrderCreated(order)
	}
}

func (uc *DefaultFulfillmentUsecase) recordOrderCreatedMetrics(order *domain.Order) {
	uc.Metrics.OrdersCreatedTotal.WithLabelValues(string(order.Status), order.Currency).Inc()
	uc.Metrics.OrdersCreatedAmountTotal.WithLabelValues(order.Currency).Add(order.TotalAmount)
}

func (uc *DefaultFulfillmentUsecase) failAttempt(ctx context.Context, input *fulfillmentdto.WebhookEventInput, cause error, start time.Time) {
	if err := uc.WebhookLedger.MarkAttempt(ctx, input.ExternalEventID, false, cause); err != nil {
		slog.Error("failed to mark webhook attempt", "event_id", input.ExternalEventID, "error", err.Error())
	}
	uc.Metrics.WebhooksFailedTotal.WithLabelValues(input.EventType).Inc()
	uc.observeDuration(start, "failure")
}

func (uc *DefaultFulfillmentUsecase) observeDuration(start time.Time, outcome string) {
	uc.Metrics.FulfillmentDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
