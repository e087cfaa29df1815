package common

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectDb opens the sqlite database at path.
func ConnectDb(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path not set")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	logger.Info("opened sqlite db", zap.String("path", path))
	return db, nil
}

// ConnectAnalyticsDb opens the separate analytics database. An empty path
// disables analytics and returns nil.
func ConnectAnalyticsDb(path string, logger *zap.Logger) *gorm.DB {
	if path == "" {
		logger.Info("analytics db not set, analytics disabled")
		return nil
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		logger.Warn("error opening analytics sqlite db", zap.String("path", path), zap.Error(err))
		return nil
	}

	logger.Info("opened analytics sqlite db", zap.String("path", path))
	return db
}
