package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, Validate(FS(), Dir))
}

func TestValidateRejectsBadFiles(t *testing.T) {
	badName := fstest.MapFS{
		"m/create_things.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	assert.Error(t, Validate(badName, "m"))

	missingDown := fstest.MapFS{
		"m/20260101000000_things.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
	}
	assert.Error(t, Validate(missingDown, "m"))

	dup := fstest.MapFS{
		"m/20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"m/20260101000000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
	}
	assert.Error(t, Validate(dup, "m"))
}

func TestRunUpCreatesCartEntries(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Run(context.Background(), sqlDB, config.StorageDriverSQLite, "up"))
	assert.True(t, conn.Migrator().HasTable("cart_entries"))

	require.NoError(t, MigrateToVersion(context.Background(), sqlDB, config.StorageDriverSQLite, "0"))
	assert.False(t, conn.Migrator().HasTable("cart_entries"))
}

func TestDialectForUnknownDriver(t *testing.T) {
	_, err := dialectFor(config.StorageDriverRedis)
	assert.Error(t, err)
}
