package repository

import (
	"context"
	"errors"
	"fmt"

	"proposalhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// PushSubscriptionRepository manages per-device push registrations.
type PushSubscriptionRepository interface {
	// Upsert registers an endpoint for a user; re-registering the same
	// user+endpoint pair is a no-op.
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	GetByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	Delete(ctx context.Context, id int64) error
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
}

type pushSubscriptionRepository struct {
	db *gorm.DB
}

func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	var existing models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", sub.UserID, sub.Endpoint).
		First(&existing).Error
	if err == nil {
		// already registered; keep the original row
		sub.ID = existing.ID
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup push subscription: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("create push subscription: %w", err)
	}
	return nil
}

func (r *pushSubscriptionRepository) GetByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("get push subscriptions: %w", err)
	}
	return subs, nil
}

func (r *pushSubscriptionRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.PushSubscription{}, id).Error; err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("delete push subscription by endpoint: %w", err)
	}
	return nil
}
