package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.WithContext(ctx).Create(orderModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getOrder(ctx, "id = ?", orderID)
}

func (r *DefaultOrderRepository) GetOrderBySessionID(ctx context.Context, externalSessionID string) (*domain.Order, error) {
	return r.getOrder(ctx, "external_session_id = ?", externalSessionID)
}

func (r *DefaultOrderRepository) getOrder(ctx context.Context, query string, arg string) (*domain.Order, error) {
	var order models.OrderModel
	err := r.DB.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_line_item_models.position ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history_models.id ASC")
		}).
		Preload("InventoryIssues").
		First(&order, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

// UpdateOrderStatus writes the new status and appends the history row in
// one transaction, keeping the history append-only.
func (r *DefaultOrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, transition domain.StatusTransition) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderModel{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{
				"status":     string(transition.To),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}

		return tx.Create(&models.OrderStatusHistoryModel{
			OrderID:    orderID,
			FromStatus: string(transition.From),
			ToStatus:   string(transition.To),
			Actor:      transition.Actor,
			Reason:     transition.Reason,
			CreatedAt:  transition.Timestamp,
		}).Error
	})
}

func (r *DefaultOrderRepository) ReplaceInventoryIssues(ctx context.Context, orderID string, issues []domain.InventoryIssue) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.InventoryIssueModel{}).Error; err != nil {
			return err
		}
		for _, issue := range issues {
			row := mappers.ToGORMInventoryIssue(orderID, issue)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DefaultOrderRepository) ListOrders(ctx context.Context, filters domain.OrderFilters, page, limit int64) ([]*domain.Order, int64, error) {
	var orderModels []models.OrderModel
	var total int64

	baseQuery := r.DB.WithContext(ctx).Model(&models.OrderModel{})

	if len(filters.Statuses) > 0 {
		statuses := make([]string, len(filters.Statuses))
		for i, s := range filters.Statuses {
			statuses[i] = string(s)
		}
		baseQuery = baseQuery.Where("order_models.status IN (?)", statuses)
	}

	if filters.ExternalSessionID != "" {
		baseQuery = baseQuery.Where("order_models.external_session_id = ?", filters.ExternalSessionID)
	}

	if !filters.DateFrom.IsZero() {
		baseQuery = baseQuery.Where("order_models.created_at >= ?", filters.DateFrom)
	}

	if !filters.DateTo.IsZero() {
		baseQuery = baseQuery.Where("order_models.created_at <= ?", filters.DateTo)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	err := baseQuery.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_line_item_models.position ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history_models.id ASC")
		}).
		Preload("InventoryIssues").
		Order("order_models.created_at DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&orderModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find orders: %w", err)
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, total, nil
}
