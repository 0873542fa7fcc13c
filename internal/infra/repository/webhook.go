package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/RYGhub/ryglfg/internal/domain"
	"github.com/RYGhub/ryglfg/internal/infra/database/models"
)

type WebhookRepository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// All returns every registered webhook. The dispatcher calls this on
// each event so the set is always current.
func (r *WebhookRepository) All(ctx context.Context) ([]domain.Webhook, error) {
	var records []models.Webhook
	err := r.db.WithContext(ctx).Order("wid").Find(&records).Error
	if err != nil {
		return nil, err
	}

	webhooks := make([]domain.Webhook, 0, len(records))
	for _, record := range records {
		webhooks = append(webhooks, toDomainWebhook(record))
	}
	return webhooks, nil
}

func (r *WebhookRepository) Get(ctx context.Context, wid int64) (domain.Webhook, error) {
	var record models.Webhook
	err := r.db.WithContext(ctx).Where("wid = ?", wid).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Webhook{}, domain.NotFoundError{Resource: "webhook"}
	}
	if err != nil {
		return domain.Webhook{}, err
	}
	return toDomainWebhook(record), nil
}

func (r *WebhookRepository) Create(ctx context.Context, url string, format domain.WebhookFormat) (domain.Webhook, error) {
	record := models.Webhook{
		URL:    url,
		Format: string(format),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return domain.Webhook{}, err
	}
	return toDomainWebhook(record), nil
}

func (r *WebhookRepository) Delete(ctx context.Context, wid int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Webhook{}, "wid = ?", wid)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "webhook"}
	}
	return nil
}

func toDomainWebhook(record models.Webhook) domain.Webhook {
	return domain.Webhook{
		WID:    record.WID,
		URL:    record.URL,
		Format: domain.WebhookFormat(record.Format),
	}
}
