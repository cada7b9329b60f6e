package database

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"agora/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPoolFor(t *testing.T) {
	p := poolFor(&config.Config{DBMaxOpenConns: 10, DBMaxIdleConns: 5, DBConnMaxLifetimeMinutes: 15})
	assert.Equal(t, pool{MaxOpen: 10, MaxIdle: 5, Lifetime: 15 * time.Minute}, p)

	p = poolFor(&config.Config{DBMaxIdleConns: 99})
	assert.Equal(t, pool{MaxOpen: 25, MaxIdle: 12, Lifetime: 5 * time.Minute}, p)
}

func TestApplyPool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, applyPool(db, poolFor(&config.Config{DBMaxOpenConns: 10})))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "agora", DBPassword: "it's secret", DBName: "agora"}
	assert.Equal(t, `host=db port=5432 user=agora password='it\'s secret' dbname=agora sslmode=disable`, postgresDSN(cfg))

	cfg.DBPassword = ""
	cfg.DBSSLMode = "require"
	assert.Equal(t, "host=db port=5432 user=agora dbname=agora sslmode=require", postgresDSN(cfg))
}

func TestRegisteredMigrations(t *testing.T) {
	migrations := GetMigrations()
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init_schema", migrations[0].Name)
	assert.Contains(t, migrations[0].UpScript, "CREATE TABLE IF NOT EXISTS post_stats")
	assert.Contains(t, migrations[0].DownScript, "DROP TABLE IF EXISTS users")
	assert.Equal(t, "000001_init_schema", migrations[0].String())
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		mode     string
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid in development", "development", "hybrid", true, true, false},
		{"empty mode defaults to hybrid", "development", "", true, true, false},
		{"hybrid in production", "production", "hybrid", true, false, false},
		{"sql only", "development", "sql", true, false, false},
		{"auto in development", "development", "auto", false, true, false},
		{"auto refused in production", "production", "auto", false, false, true},
		{"unknown mode", "development", "magic", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSchema(&config.Config{Env: tt.env, DBSchemaMode: tt.mode})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, plan.RunSQL)
			assert.Equal(t, tt.wantAuto, plan.RunAuto)
		})
	}
}

func TestApplySchema_AutoMode(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable("post_stats"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Equal(t, SchemaModeAuto, status.Mode)
	assert.False(t, status.RunSQL)
	assert.True(t, status.RunAuto)
}

func TestVerifyApplied(t *testing.T) {
	registered := GetMigrations()
	current := registered[0].Checksum

	assert.NoError(t, verifyApplied(nil, registered))
	assert.NoError(t, verifyApplied([]MigrationLog{{Version: 1, Checksum: current}}, registered))
	assert.NoError(t, verifyApplied([]MigrationLog{{Version: 1}}, registered), "legacy rows without checksum")
	assert.ErrorContains(t, verifyApplied([]MigrationLog{{Version: 1}, {Version: 42}}, registered), "000042")
	assert.ErrorContains(t, verifyApplied([]MigrationLog{{Version: 1, Checksum: "stale"}}, registered), "000001_init_schema")
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		base    string
		version int
		name    string
		ok      bool
	}{
		{"000001_init_schema", 1, "init_schema", true},
		{"000012_add_index", 12, "add_index", true},
		{"init_schema", 0, "", false},
		{"abc_init", 0, "", false},
		{"000003_", 0, "", false},
		{"000000_zero", 0, "", false},
	}
	for _, tt := range tests {
		version, name, ok := parseMigrationName(tt.base)
		assert.Equal(t, tt.ok, ok, tt.base)
		assert.Equal(t, tt.version, version, tt.base)
		assert.Equal(t, tt.name, name, tt.base)
	}
}

func sqliteMigrations() fstest.MapFS {
	return fstest.MapFS{
		"m/000001_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"m/000001_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"m/000002_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY);")},
		"m/000002_gadgets.down.sql": {Data: []byte("DROP TABLE gadgets;")},
		"m/README.md":               {Data: []byte("ignored")},
		"m/not-a-migration.up.sql":  {Data: []byte("SELECT 1;")},
	}
}

func TestLoadMigrations(t *testing.T) {
	set, err := LoadMigrations(sqliteMigrations(), "m")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "000001_widgets", set[0].String())
	assert.Equal(t, "000002_gadgets", set[1].String())
	assert.Len(t, set[0].Checksum, 64)

	missingDown := fstest.MapFS{"m/000001_x.up.sql": {Data: []byte("SELECT 1;")}}
	_, err = LoadMigrations(missingDown, "m")
	assert.ErrorContains(t, err, "down migration")
}

func TestMigratorUpDown(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	set, err := LoadMigrations(sqliteMigrations(), "m")
	require.NoError(t, err)
	m := NewMigratorWith(db, set)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	n, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable("widgets"))
	assert.True(t, db.Migrator().HasTable("gadgets"))

	n, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second run is a no-op")

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasTable("gadgets"))
	assert.ErrorContains(t, m.Down(ctx, 2), "has not been applied")
	assert.ErrorContains(t, m.Down(ctx, 7), "not found")

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, set[0].Checksum, applied[0].Checksum)
}

func TestMigratorRollsBackFailedScript(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	broken := []Migration{{Version: 1, Name: "broken", UpScript: "CREATE TABLE ok_table (id INTEGER); THIS IS NOT SQL;", DownScript: ""}}

	_, err = NewMigratorWith(db, broken).Up(ctx)
	require.Error(t, err)

	applied, err := NewMigratorWith(db, broken).Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRegisterQueryMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterQueryMetrics(db))
	require.NoError(t, runAutoMigrate(db))

	var count int64
	assert.NoError(t, db.Table("users").Count(&count).Error)
	assert.Zero(t, count)
}
