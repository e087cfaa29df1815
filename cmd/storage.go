package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vitrine/common"
	"vitrine/config"
	"vitrine/content"
	"vitrine/database"
	"vitrine/kv"
)

// resources are the shared connections every command opens.
type resources struct {
	db    *gorm.DB
	redis *redis.Client
	store *content.Store
}

func (r *resources) Close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// openResources connects the sqlite database, redis when configured, and
// the content store on the configured backend.
func openResources(cfg *config.Config, logger *zap.Logger) (*resources, error) {
	r := &resources{}

	db, err := common.ConnectDb(cfg.Storage.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	r.db = db
	if err := database.RunMigrations(db, logger); err != nil {
		r.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		r.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.redis.Ping(ctx).Err()
		cancel()
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	backend, err := newBackend(cfg, r)
	if err != nil {
		r.Close()
		return nil, err
	}

	store, err := content.New(backend,
		content.WithLogger(logger.Named("content")),
		content.WithKey(cfg.Storage.Key),
		content.WithTimeout(cfg.Storage.Timeout),
	)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.store = store

	logger.Info("content store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("key", cfg.Storage.Key),
	)
	return r, nil
}

func newBackend(cfg *config.Config, r *resources) (kv.Backend, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return kv.NewGorm(r.db), nil
	case "file":
		return kv.NewFile(cfg.Storage.FileDir)
	case "redis":
		if r.redis == nil {
			return nil, fmt.Errorf("redis driver selected but redis addr is empty")
		}
		return kv.NewRedis(r.redis, cfg.Redis.Prefix), nil
	case "memory":
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
