// Package database handles database connections and migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/internal/config"
	"agora/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// schemaTimeout bounds migrations run during Connect.
const schemaTimeout = 2 * time.Minute

// Pool defaults used when the configuration leaves a value unset.
const (
	defaultMaxOpenConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
)

// ConnectOptions tunes what Connect does after the connection opens.
type ConnectOptions struct {
	ApplySchema bool
}

// Connect opens the database and applies the configured schema policy.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens a PostgreSQL connection. Migration tooling passes
// ApplySchema false so it can drive the schema itself.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(postgresDSN(cfg)), &gorm.Config{
		Logger:         newGormLogger(middleware.Logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	middleware.Logger.Info("database connected", slog.String("host", cfg.DBHost), slog.String("db", cfg.DBName))

	if err := RegisterQueryMetrics(db); err != nil {
		return nil, err
	}

	if opts.ApplySchema {
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		if err := ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if err := applyPool(db, poolFor(cfg)); err != nil {
		return nil, err
	}
	return db, nil
}

// postgresDSN builds a keyword/value connection string, quoting values that
// contain spaces or quotes.
func postgresDSN(cfg *config.Config) string {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := [][2]string{
		{"host", cfg.DBHost},
		{"port", cfg.DBPort},
		{"user", cfg.DBUser},
		{"password", cfg.DBPassword},
		{"dbname", cfg.DBName},
		{"sslmode", sslMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		parts = append(parts, p[0]+"="+dsnValue(p[1]))
	}
	return strings.Join(parts, " ")
}

func dsnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// pool holds the connection pool limits applied to sql.DB.
type pool struct {
	MaxOpen  int
	MaxIdle  int
	Lifetime time.Duration
}

func poolFor(cfg *config.Config) pool {
	p := pool{
		MaxOpen:  cfg.DBMaxOpenConns,
		MaxIdle:  cfg.DBMaxIdleConns,
		Lifetime: time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute,
	}
	if p.MaxOpen <= 0 {
		p.MaxOpen = defaultMaxOpenConns
	}
	if p.MaxIdle <= 0 || p.MaxIdle > p.MaxOpen {
		p.MaxIdle = p.MaxOpen / 2
	}
	if p.Lifetime <= 0 {
		p.Lifetime = defaultConnMaxLifetime
	}
	return p
}

func applyPool(db *gorm.DB, p pool) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(p.MaxOpen)
	sqlDB.SetMaxIdleConns(p.MaxIdle)
	sqlDB.SetConnMaxLifetime(p.Lifetime)
	return nil
}
