package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proposal statuses. Follow-up tracking only applies to the active ones;
// approved/rejected/cancelled proposals are terminal.
const (
	StatusDraft     = "draft"
	StatusSent      = "sent"
	StatusRevised   = "revised"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses still subject to follow-up tracking.
var ActiveStatuses = []string{StatusDraft, StatusSent, StatusRevised}

type Proposal struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:uuid"`
	ProposalNo         string     `json:"proposal_no" gorm:"uniqueIndex;not null"`
	CustomerName       string     `json:"customer_name" gorm:"not null"`
	Amount             float64    `json:"amount" gorm:"type:decimal(14,2)"`
	Currency           string     `json:"currency" gorm:"size:3;default:'TRY'"`
	Status             string     `json:"status" gorm:"not null;default:'draft';index"`
	RepresentativeID   string     `json:"representative_id" gorm:"type:uuid;index"`
	RepresentativeName string     `json:"representative_name"`

	// Follow-up state. NextFollowUpDate nil means no schedule is pending.
	NextFollowUpDate    *time.Time `json:"next_follow_up_date,omitempty" gorm:"type:date;index"`
	MissedFollowUpCount int        `json:"missed_follow_up_count" gorm:"default:0"`
	LastContactDate     *time.Time `json:"last_contact_date,omitempty" gorm:"type:date"`
	LastReminderSentAt  *time.Time `json:"last_reminder_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	Representative *Profile `json:"representative,omitempty" gorm:"foreignKey:RepresentativeID"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// BeforeCreate hook to set UUID before creating a Proposal
func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// IsActive reports whether the proposal is still subject to follow-up tracking.
func (p *Proposal) IsActive() bool {
	for _, s := range ActiveStatuses {
		if p.Status == s {
			return true
		}
	}
	return false
}
