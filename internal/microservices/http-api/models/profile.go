package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile mirrors the identity managed by the external auth service.
// Credentials live there; we only keep the fields the app needs.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"default:'representative';not null" json:"role"` // only 2 roles: "representative", "admin" for now
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a Profile
func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	// If the ID is not already set, generate a new one.
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

func (Profile) TableName() string {
	return "profiles"
}
