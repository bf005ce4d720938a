package models

import "time"

// Follow-up lifecycle actions recorded in the audit log.
const (
	ActionScheduled = "scheduled"
	ActionCompleted = "completed"
	ActionMissed    = "missed"
)

// FollowUpLog is an append-only audit record of one follow-up lifecycle
// event. Rows are never updated or deleted.
type FollowUpLog struct {
	ID               int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProposalID       string     `json:"proposal_id" gorm:"type:uuid;not null;index"`
	RepresentativeID string     `json:"representative_id" gorm:"type:uuid;index"`
	ActionType       string     `json:"action_type" gorm:"not null"` // scheduled, completed, missed
	ScheduledDate    time.Time  `json:"scheduled_date" gorm:"type:date;not null"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Notes            string     `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Proposal *Proposal `json:"proposal,omitempty" gorm:"foreignKey:ProposalID"`
}

func (FollowUpLog) TableName() string {
	return "follow_up_logs"
}
