package repository

import (
	"context"

	"proposalhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ProfileRepository reads the identity rows mirrored from the external auth
// service.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	FindAdmins(ctx context.Context) ([]models.Profile, error)
}

// profileRepository is the GORM implementation of ProfileRepository.
type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindAdmins(ctx context.Context) ([]models.Profile, error) {
	var admins []models.Profile
	if err := r.db.WithContext(ctx).Where("role = ?", "admin").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
