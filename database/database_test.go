package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{
			name: "sqlite",
			cfg:  Config{Driver: "sqlite", Path: "testgen.db"},
			want: "testgen.db",
		},
		{
			name: "mysql",
			cfg: Config{
				Driver:   "MySQL",
				Host:     "db.internal",
				Port:     3306,
				User:     "testgen",
				Password: "secret",
				Database: "testgen",
			},
			want: "testgen:secret@tcp(db.internal:3306)/testgen?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name:    "unknown driver",
			cfg:     Config{Driver: "postgres"},
			wantErr: ErrUnsupportedDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.DSN()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Config{Driver: "sqlite"}.DSN()
	assert.Error(t, err)

	_, err = Config{Driver: "mysql", Host: "localhost"}.DSN()
	assert.Error(t, err)
}

type widget struct {
	ID   uint
	Name string
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	cfg := Config{
		Driver:       DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "testgen.db"),
		MaxOpenConns: 1,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db, cfg.Driver, &widget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))
}

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "000001_create_settings.up.sql")
	assert.Contains(t, files, "000001_create_settings.down.sql")
}
