package database

import (
	"fmt"
	"log/slog"

	"proposalhub/internal/config"
	"proposalhub/internal/microservices/http-api/models"
	"proposalhub/internal/sweep"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the Postgres connection and keeps the schema current.
// Proposals and profiles are mirrored from the CRM core; migrations here
// only ever add what the follow-up engine owns.
func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	gormLogLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLogLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Proposal{},
		&models.FollowUpLog{},
		&models.Notification{},
		&models.PushSubscription{},
		&sweep.SweepState{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}
