package models

import "time"

// Notification types.
const (
	NotificationReminder = "reminder"
	NotificationStatus   = "status"
	NotificationSystem   = "system"
)

type Notification struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProposalID *string   `gorm:"type:uuid" json:"proposal_id,omitempty"`
	Type       string    `gorm:"not null" json:"type"` // reminder, status, system
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	IsRead     bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Associations
	User     *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Proposal *Proposal `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
