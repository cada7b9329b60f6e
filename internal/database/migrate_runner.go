package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"agora/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// Migrator applies and reverts a fixed set of migrations, tracking them in migration_logs.
type Migrator struct {
	db  *gorm.DB
	set []Migration
}

// NewMigrator returns a Migrator over the embedded migrations.
func NewMigrator(db *gorm.DB) *Migrator {
	return NewMigratorWith(db, migrations)
}

// NewMigratorWith returns a Migrator over set, which must be sorted by version.
func NewMigratorWith(db *gorm.DB, set []Migration) *Migrator {
	return &Migrator{db: db, set: set}
}

func (m *Migrator) ensureLogTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration_logs table: %w", err)
	}
	return nil
}

// Applied returns the recorded migrations in version order. A missing log table means none.
func (m *Migrator) Applied(ctx context.Context) ([]MigrationLog, error) {
	if !m.db.WithContext(ctx).Migrator().HasTable(&MigrationLog{}) {
		return nil, nil
	}
	var logs []MigrationLog
	if err := m.db.WithContext(ctx).Order("version ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return logs, nil
}

// Pending returns the migrations that have not been recorded yet.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]struct{}, len(applied))
	for _, l := range applied {
		done[l.Version] = struct{}{}
	}
	var pending []Migration
	for _, mig := range m.set {
		if _, ok := done[mig.Version]; !ok {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration. Each script and its log row commit together.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureLogTable(ctx); err != nil {
		return 0, err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}
	if err := verifyApplied(applied, m.set); err != nil {
		return 0, err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for i, mig := range pending {
		middleware.Logger.InfoContext(ctx, "applying migration", slog.String("migration", mig.String()))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", mig, err)
			}
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum}).Error
		})
		if err != nil {
			return i, err
		}
	}
	return len(pending), nil
}

// Down reverts one applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	mig := findMigration(m.set, version)
	if mig == nil {
		return fmt.Errorf("migration version %d not found", version)
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, l := range applied {
		if l.Version == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.InfoContext(ctx, "rolling back migration", slog.String("migration", mig.String()))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("roll back migration %s: %w", mig, err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
}

// verifyApplied rejects logs that name unknown versions or whose script changed since applying.
func verifyApplied(applied []MigrationLog, registered []Migration) error {
	var unknown, modified []string
	for _, l := range applied {
		mig := findMigration(registered, l.Version)
		switch {
		case mig == nil:
			unknown = append(unknown, fmt.Sprintf("%06d", l.Version))
		case l.Checksum != "" && l.Checksum != mig.Checksum:
			modified = append(modified, mig.String())
		}
	}
	sort.Strings(unknown)
	if len(unknown) > 0 {
		return fmt.Errorf(
			"migration_logs contains unknown versions not present in code: %s (drop and recreate the development database to rebuild)",
			strings.Join(unknown, ", "),
		)
	}
	if len(modified) > 0 {
		return fmt.Errorf("applied migrations were edited afterwards: %s", strings.Join(modified, ", "))
	}
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	n, err := NewMigrator(db).Up(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "sql migrations up to date", slog.Int("applied", n))
	return nil
}

// RollbackMigration reverts the embedded migration with version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db).Down(ctx, version)
}
