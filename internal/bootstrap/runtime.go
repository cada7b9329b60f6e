// Package bootstrap wires process-level dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with generated content.
	SeedDemoData bool
	SeedOptions  seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds demo content.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		if err := seedIfEmpty(ctx, cfg, db, opts.SeedOptions); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, opts seed.Options) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		middleware.Logger.WarnContext(ctx, "demo seeding skipped outside development", slog.String("env", cfg.Env))
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	if opts.NumUsers == 0 {
		opts = seed.DefaultOptions()
	}
	opts.BcryptCost = cfg.BcryptCost
	_, err := seed.NewSeeder(db, opts).Run(ctx)
	return err
}
