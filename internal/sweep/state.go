package sweep

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// SweepState tracks the last run of each sweep job, one row per job.
type SweepState struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	JobType        string     `gorm:"uniqueIndex;not null" json:"job_type"`
	LastRunAt      *time.Time `json:"last_run_at"`
	LastSuccessAt  *time.Time `json:"last_success_at"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message"`
	ProcessedCount int        `json:"processed_count"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (SweepState) TableName() string {
	return "sweep_state"
}

// StateStore records sweep runs for operational visibility.
type StateStore interface {
	Record(ctx context.Context, job, status string, processed int, runErr error) error
	Get(ctx context.Context, job string) (*SweepState, error)
}

type gormStateStore struct {
	db *gorm.DB
}

func NewStateStore(db *gorm.DB) StateStore {
	return &gormStateStore{db: db}
}

func (s *gormStateStore) Record(ctx context.Context, job, status string, processed int, runErr error) error {
	now := time.Now()

	if err := s.db.WithContext(ctx).
		Where(SweepState{JobType: job}).
		FirstOrCreate(&SweepState{JobType: job}).Error; err != nil {
		return fmt.Errorf("failed to ensure sweep state row for %s: %w", job, err)
	}

	updates := map[string]interface{}{
		"last_run_at":     now,
		"status":          status,
		"processed_count": processed,
	}
	if status == StatusCompleted {
		updates["last_success_at"] = now
		updates["error_message"] = ""
	}
	if runErr != nil {
		updates["error_message"] = runErr.Error()
	}

	if err := s.db.WithContext(ctx).
		Model(&SweepState{}).
		Where("job_type = ?", job).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update sweep state for %s: %w", job, err)
	}
	return nil
}

func (s *gormStateStore) Get(ctx context.Context, job string) (*SweepState, error) {
	var state SweepState
	if err := s.db.WithContext(ctx).
		Where("job_type = ?", job).
		First(&state).Error; err != nil {
		return nil, fmt.Errorf("failed to get sweep state for %s: %w", job, err)
	}
	return &state, nil
}
