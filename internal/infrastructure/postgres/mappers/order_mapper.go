package mappers

import (
	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	model := &models.OrderModel{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		ExternalSessionID: order.ExternalSessionID,
		Status:            string(order.Status),
		TotalAmount:       order.TotalAmount,
		OriginalAmount:    order.OriginalAmount,
		Currency:          order.Currency,
		CouponCode:        order.CouponCode,
		CustomerEmail:     order.CustomerEmail,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}

	for i, item := range order.LineItems {
		model.LineItems = append(model.LineItems, models.OrderLineItemModel{
			OrderID:   order.ID,
			Position:  i,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	for _, tr := range order.StatusHistory {
		model.StatusHistory = append(model.StatusHistory, models.OrderStatusHistoryModel{
			OrderID:    order.ID,
			FromStatus: string(tr.From),
			ToStatus:   string(tr.To),
			Actor:      tr.Actor,
			Reason:     tr.Reason,
			CreatedAt:  tr.Timestamp,
		})
	}

	for _, issue := range order.InventoryIssues {
		model.InventoryIssues = append(model.InventoryIssues, ToGORMInventoryIssue(order.ID, issue))
	}

	return model
}

func ToGORMInventoryIssue(orderID string, issue domain.InventoryIssue) models.InventoryIssueModel {
	return models.InventoryIssueModel{
		OrderID:   orderID,
		ProductID: issue.ProductID,
		VariantID: issue.VariantID,
		Requested: issue.Requested,
		Available: issue.Available,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	order := &domain.Order{
		ID:                model.ID,
		OrderNumber:       model.OrderNumber,
		ExternalSessionID: model.ExternalSessionID,
		Status:            domain.OrderStatus(model.Status),
		TotalAmount:       model.TotalAmount,
		OriginalAmount:    model.OriginalAmount,
		Currency:          model.Currency,
		CouponCode:        model.CouponCode,
		CustomerEmail:     model.CustomerEmail,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	for _, item := range model.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	for _, row := range model.StatusHistory {
		order.StatusHistory = append(order.StatusHistory, domain.StatusTransition{
			From:      domain.OrderStatus(row.FromStatus),
			To:        domain.OrderStatus(row.ToStatus),
			Timestamp: row.CreatedAt,
			Actor:     row.Actor,
			Reason:    row.Reason,
		})
	}

	for _, issue := range model.InventoryIssues {
		order.InventoryIssues = append(order.InventoryIssues, domain.InventoryIssue{
			ProductID: issue.ProductID,
			VariantID: issue.VariantID,
			Requested: issue.Requested,
			Available: issue.Available,
		})
	}

	return order
}
