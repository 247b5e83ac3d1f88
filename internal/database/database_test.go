package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost:5432/rentals"))
	assert.True(t, IsPostgres("postgresql://localhost/rentals"))
	assert.False(t, IsPostgres("rentals.db"))
	assert.False(t, IsPostgres("file::memory:?cache=shared"))
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "rentals.db")

	db, err := Connect(dsn, false)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("products"))
	assert.True(t, db.Migrator().HasTable("bookings"))

	// idempotent
	require.NoError(t, Migrate(db))
}
