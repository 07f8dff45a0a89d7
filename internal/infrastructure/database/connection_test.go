package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castpass/castpass/internal/shared/config"
)

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "castpass.db")

	gdb, err := Open(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.FileExists(t, path)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitPingClose(t *testing.T) {
	require.NoError(t, Init(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}))
	assert.NoError(t, Ping(context.Background()))
	assert.NoError(t, Close())
	assert.Error(t, Ping(context.Background()))
	assert.NoError(t, Close())
}
