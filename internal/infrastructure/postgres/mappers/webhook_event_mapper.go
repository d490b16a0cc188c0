package mappers

import (
	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMWebhookEvent(record *domain.WebhookEventRecord) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		ExternalEventID: record.ExternalEventID,
		EventType:       record.EventType,
		Processed:       record.Processed,
		Attempts:        record.Attempts,
		LastError:       record.LastError,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

func ToDomainWebhookEvent(model *models.WebhookEventModel) *domain.WebhookEventRecord {
	return &domain.WebhookEventRecord{
		ExternalEventID: model.ExternalEventID,
		EventType:       model.EventType,
		Processed:       model.Processed,
		Attempts:        model.Attempts,
		LastError:       model.LastError,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
