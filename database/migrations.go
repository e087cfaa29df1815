package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitrine/models"
)

func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("running database migrations")

	err := db.AutoMigrate(
		&models.AdminUser{},
		&models.ContentEntry{},
	)

	if err != nil {
		logger.Error("error running migrations", zap.Error(err))
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
