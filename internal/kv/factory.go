package kv

import (
	"context"
	"fmt"

	"shelf-go/internal/config"
	"shelf-go/internal/shelf"
)

// NewStoreFromConfig creates a shelf.Store implementation based on the store config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig) (shelf.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite store requires sqlite_path to be set")
		}
		return NewSQLiteStore(cfg.SQLitePath, shelf.RealClock{})
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis store requires redis_addr to be set")
		}
		return NewRedisStore(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			Timeout:  cfg.Timeout.Duration,
		})
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Timeout:   cfg.Timeout.Duration,
		})
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
