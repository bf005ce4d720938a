package repository

import (
	"context"
	"fmt"

	"proposalhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// FollowUpLogRepository appends and reads the follow-up audit trail.
// There is deliberately no update or delete: log rows are immutable.
type FollowUpLogRepository interface {
	Create(ctx context.Context, entry *models.FollowUpLog) error
	ListByProposal(ctx context.Context, proposalID string) ([]models.FollowUpLog, error)
}

type followUpLogRepository struct {
	db *gorm.DB
}

func NewFollowUpLogRepository(db *gorm.DB) FollowUpLogRepository {
	return &followUpLogRepository{db: db}
}

func (r *followUpLogRepository) Create(ctx context.Context, entry *models.FollowUpLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create follow-up log: %w", err)
	}
	return nil
}

func (r *followUpLogRepository) ListByProposal(ctx context.Context, proposalID string) ([]models.FollowUpLog, error) {
	var entries []models.FollowUpLog
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list follow-up logs: %w", err)
	}
	return entries, nil
}
