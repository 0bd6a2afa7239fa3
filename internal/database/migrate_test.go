package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexivanou/gans/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.DBConfig {
	return config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("migrate_%d", time.Now().UnixNano()),
	}
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations/sqlite", SourceURL("migrations", config.DBConfig{Type: config.DBTypeSQLite}))
	assert.Equal(t, "file://migrations/sqlite", SourceURL("migrations", config.DBConfig{Type: config.DBTypeMemory}))
	assert.Equal(t, "file://../migrations/postgres", SourceURL("../migrations", config.DBConfig{Type: config.DBTypePostgreSQL}))
}

func TestMigrate_CreatesTables(t *testing.T) {
	cfg := memoryConfig()
	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, cfg, "../../migrations"))
	// a second run has nothing left to apply
	require.NoError(t, Migrate(db, cfg, "../../migrations"))

	for _, table := range []string{"cities", "geo", "population", "airports", "weather", "flights"} {
		var n int
		err := db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestNewMigrator_Version(t *testing.T) {
	cfg := memoryConfig()
	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, cfg, "../../migrations"))

	m, err := NewMigrator(db, cfg, "../../migrations")
	require.NoError(t, err)
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}
