package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/model"
)

func TestInitSQLiteRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "greetings.db")

	conn, err := Init(config.StorageSQLite, config.DatabaseConfig{Path: path})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.True(t, conn.Migrator().HasTable(&model.Greeting{}))
	assert.True(t, conn.Migrator().HasColumn(&model.Greeting{}, "position"))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.FileExists(t, path)
}

func TestInitUnsupportedDriver(t *testing.T) {
	_, err := Init("oracle", config.DatabaseConfig{})
	assert.ErrorContains(t, err, "unsupported SQL driver")
}
