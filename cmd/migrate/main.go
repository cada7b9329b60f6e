// Command migrate runs schema operations for the Agora backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: migrate <up|auto|status|down|reset> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		middleware.Logger.Info("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		middleware.Logger.Info("automigrations applied")
	case "status":
		return status(ctx, db, cfg)
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		middleware.Logger.Info("rolled back migration", slog.Int("version", version))
	case "reset":
		if cfg.IsProduction() {
			return fmt.Errorf("reset is disabled in production")
		}
		return reset(ctx, db, cfg)
	default:
		return usage()
	}

	return nil
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	middleware.Logger.Info("schema status",
		slog.String("mode", st.Mode),
		slog.String("env", st.Environment),
		slog.Bool("run_sql", st.RunSQL),
		slog.Bool("run_auto", st.RunAuto),
		slog.Int("applied", len(st.AppliedVersions)),
		slog.Int("pending", len(st.PendingMigrations)),
	)
	for _, m := range st.PendingMigrations {
		middleware.Logger.Info("pending migration", slog.String("migration", m.String()))
	}
	return nil
}

// reset rolls back every applied migration, newest first, then reapplies them.
func reset(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	applied := append([]int(nil), st.AppliedVersions...)
	sort.Sort(sort.Reverse(sort.IntSlice(applied)))
	for _, version := range applied {
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback %d failed: %w", version, err)
		}
	}
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	middleware.Logger.Info("schema reset", slog.Int("rolled_back", len(applied)))
	return nil
}
