package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/config"
	"agora/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema will run for a configuration.
type SchemaPlan struct {
	Mode    string
	RunSQL  bool
	RunAuto bool
}

// SchemaStatus describes what ApplySchema would do against the current database.
type SchemaStatus struct {
	SchemaPlan
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
}

var prodLikeEnvs = map[string]bool{"production": true, "prod": true, "staging": true, "stage": true}

// PlanSchema resolves DB_SCHEMA_MODE against the environment. AutoMigrate
// never runs in production-like environments.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	prodLike := prodLikeEnvs[strings.ToLower(strings.TrimSpace(cfg.Env))]

	plan := SchemaPlan{Mode: mode}
	switch mode {
	case SchemaModeSQL:
		plan.RunSQL = true
	case SchemaModeHybrid:
		plan.RunSQL, plan.RunAuto = true, !prodLike
	case SchemaModeAuto:
		if prodLike {
			return SchemaPlan{}, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q; use sql or hybrid", cfg.Env)
		}
		plan.RunAuto = true
	default:
		return SchemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

func runAutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs SQL migrations and/or AutoMigrate according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	if plan.RunSQL {
		n, err := NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
		if n > 0 {
			middleware.Logger.InfoContext(ctx, "sql migrations applied", slog.Int("count", n))
		}
	}
	if plan.RunAuto {
		if err := runAutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	middleware.Logger.InfoContext(ctx, "database schema ready",
		slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
	return nil
}

// GetSchemaStatus reports the plan and migration state without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}
	if !plan.RunSQL {
		return status, nil
	}

	mig := NewMigrator(db)
	applied, err := mig.Applied(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range applied {
		status.AppliedVersions = append(status.AppliedVersions, l.Version)
	}
	if status.PendingMigrations, err = mig.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
