package database

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"agora/internal/middleware"
)

// Migration is one embedded SQL migration with its rollback script.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
	// Checksum is the hex SHA-256 of UpScript, recorded when applied.
	Checksum string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations []Migration

func init() {
	loaded, err := LoadMigrations(migrationFS, "migrations")
	if err != nil {
		middleware.Logger.Error("failed to load embedded migrations", slog.String("error", err.Error()))
		return
	}
	migrations = loaded
}

// LoadMigrations reads NNNNNN_name.up.sql / NNNNNN_name.down.sql pairs from dir,
// sorted by version. Every up script needs a down script; versions must be unique.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".up.sql")
		version, name, ok := parseMigrationName(base)
		if !ok {
			middleware.Logger.Warn("skipping migration with invalid name", slog.String("file", entry.Name()))
			continue
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %06d: %s and %s", version, prev, base)
		}
		seen[version] = base

		up, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read up migration %s: %w", base, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("read down migration %s: %w", base, err)
		}

		sum := sha256.Sum256(up)
		out = append(out, Migration{
			Version:    version,
			Name:       name,
			UpScript:   string(up),
			DownScript: string(down),
			Checksum:   hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func parseMigrationName(base string) (int, string, bool) {
	prefix, name, found := strings.Cut(base, "_")
	if !found || name == "" {
		return 0, "", false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", false
	}
	return version, name, true
}

// GetMigrations returns the embedded migrations in version order.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the embedded migration with version, or nil.
func GetMigrationByVersion(version int) *Migration {
	return findMigration(migrations, version)
}

func findMigration(set []Migration, version int) *Migration {
	for i := range set {
		if set[i].Version == version {
			return &set[i]
		}
	}
	return nil
}
