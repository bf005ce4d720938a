package repository

import (
	"context"
	"fmt"
	"time"

	"proposalhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ProposalRepository defines the store operations the follow-up engine and
// the HTTP surface need on proposals. The proposal table itself is owned by
// the backing store; everything here is a thin query/update.
type ProposalRepository interface {
	GetByID(ctx context.Context, id string) (*models.Proposal, error)
	List(ctx context.Context, representativeID string, page, pageSize int) ([]models.Proposal, int64, error)

	// Sweep selections.
	FindOverdueFollowUps(ctx context.Context, today time.Time) ([]models.Proposal, error)
	FindStale(ctx context.Context, before time.Time) ([]models.Proposal, error)
	FindFollowUpsBetween(ctx context.Context, from, to time.Time) ([]models.Proposal, error)

	// Follow-up state mutations.
	SetSchedule(ctx context.Context, id string, date time.Time) error
	ClearMissedSchedule(ctx context.Context, id string, newMissedCount int) error
	CompleteFollowUp(ctx context.Context, id string, contactDate time.Time) error
	StampReminderSent(ctx context.Context, id string, at time.Time) error
}

// proposalRepository is the GORM implementation of ProposalRepository.
type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) GetByID(ctx context.Context, id string) (*models.Proposal, error) {
	var p models.Proposal
	// return nil on error so a zero-value struct never looks like a hit
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposalRepository) List(ctx context.Context, representativeID string, page, pageSize int) ([]models.Proposal, int64, error) {
	var list []models.Proposal
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Proposal{})
	if representativeID != "" {
		q = q.Where("representative_id = ?", representativeID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := q.Order("created_at desc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindOverdueFollowUps selects active proposals whose follow-up date has
// passed. Terminal statuses are excluded no matter how overdue the date is.
func (r *proposalRepository) FindOverdueFollowUps(ctx context.Context, today time.Time) ([]models.Proposal, error) {
	var list []models.Proposal
	err := r.db.WithContext(ctx).
		Where("next_follow_up_date IS NOT NULL").
		Where("next_follow_up_date < ?", today.Format("2006-01-02")).
		Where("status IN ?", models.ActiveStatuses).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("find overdue follow-ups: %w", err)
	}
	return list, nil
}

// FindStale selects active proposals older than the threshold that have not
// been reminded since it. Independent of the overdue selection above.
func (r *proposalRepository) FindStale(ctx context.Context, before time.Time) ([]models.Proposal, error) {
	var list []models.Proposal
	err := r.db.WithContext(ctx).
		Where("status IN ?", models.ActiveStatuses).
		Where("created_at < ?", before).
		Where("last_reminder_sent_at IS NULL OR last_reminder_sent_at < ?", before).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("find stale proposals: %w", err)
	}
	return list, nil
}

// FindFollowUpsBetween selects sent/revised proposals whose follow-up falls
// inside the window. Drafts carry no deadline worth a heads-up.
func (r *proposalRepository) FindFollowUpsBetween(ctx context.Context, from, to time.Time) ([]models.Proposal, error) {
	var list []models.Proposal
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.StatusSent, models.StatusRevised}).
		Where("next_follow_up_date >= ? AND next_follow_up_date <= ?",
			from.Format("2006-01-02"), to.Format("2006-01-02")).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("find follow-ups in window: %w", err)
	}
	return list, nil
}

func (r *proposalRepository) SetSchedule(ctx context.Context, id string, date time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("next_follow_up_date", date.Format("2006-01-02")).Error
	if err != nil {
		return fmt.Errorf("set follow-up schedule: %w", err)
	}
	return nil
}

// ClearMissedSchedule consumes an overdue schedule: the date goes back to
// null and the miss counter takes the caller-computed value. No
// auto-rescheduling happens here.
func (r *proposalRepository) ClearMissedSchedule(ctx context.Context, id string, newMissedCount int) error {
	err := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"missed_follow_up_count": newMissedCount,
			"next_follow_up_date":    nil,
		}).Error
	if err != nil {
		return fmt.Errorf("clear missed schedule: %w", err)
	}
	return nil
}

func (r *proposalRepository) CompleteFollowUp(ctx context.Context, id string, contactDate time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"next_follow_up_date": nil,
			"last_contact_date":   contactDate.Format("2006-01-02"),
		}).Error
	if err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}
	return nil
}

func (r *proposalRepository) StampReminderSent(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("last_reminder_sent_at", at).Error
	if err != nil {
		return fmt.Errorf("stamp reminder sent: %w", err)
	}
	return nil
}
