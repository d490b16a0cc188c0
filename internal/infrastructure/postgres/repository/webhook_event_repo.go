package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

type DefaultWebhookEventRepository struct {
	DB *gorm.DB
}

func NewDefaultWebhookEventRepository(db *gorm.DB) *DefaultWebhookEventRepository {
	return &DefaultWebhookEventRepository{DB: db}
}

// CreateIfAbsent relies on the primary key for atomic first-writer-wins:
// ON CONFLICT DO NOTHING reports zero rows affected for every caller
// except the one whose insert landed.
func (r *DefaultWebhookEventRepository) CreateIfAbsent(ctx context.Context, record *domain.WebhookEventRecord) (bool, *domain.WebhookEventRecord, error) {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	model := mappers.ToGORMWebhookEvent(record)
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_event_id"}},
			DoNothing: true,
		}).
		Create(model)
	if res.Error != nil {
		return false, nil, res.Error
	}
	if res.RowsAffected == 1 {
		return true, record, nil
	}

	existing, err := r.GetByEventID(ctx, record.ExternalEventID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

func (r *DefaultWebhookEventRepository) GetByEventID(ctx context.Context, externalEventID string) (*domain.WebhookEventRecord, error) {
	var model models.WebhookEventModel
	err := r.DB.WithContext(ctx).First(&model, "external_event_id = ?", externalEventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	return mappers.ToDomainWebhookEvent(&model), nil
}

// RecordAttempt increments attempts in the database, so concurrent
// attempts cannot lose counts. Processed is only ever set, never cleared.
func (r *DefaultWebhookEventRepository) RecordAttempt(ctx context.Context, externalEventID string, success bool, lastError string) error {
	updates := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"updated_at": time.Now(),
	}
	if success {
		updates["processed"] = true
	}
	if lastError != "" {
		updates["last_error"] = lastError
	}

	res := r.DB.WithContext(ctx).Model(&models.WebhookEventModel{}).
		Where("external_event_id = ?", externalEventID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
