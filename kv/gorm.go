package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vitrine/models"
)

// Gorm keeps values in the content_entries table.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.ContentEntry
	err := g.db.WithContext(ctx).Where(&models.ContentEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read entry %q: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func (g *Gorm) Set(ctx context.Context, key string, value []byte) error {
	entry := models.ContentEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write entry %q: %w", key, err)
	}
	return nil
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Delete(&models.ContentEntry{Key: key}).Error; err != nil {
		return fmt.Errorf("delete entry %q: %w", key, err)
	}
	return nil
}
