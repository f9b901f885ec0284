// Package dbtest provides an in-memory store with the production schema for tests.
package dbtest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ArtyomSF99/url-shortener/internal/database"
)

// NewSQLite opens a private in-memory sqlite database and applies the migrations.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// every connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db, "sqlite3"))

	t.Cleanup(func() { db.Close() })
	return db
}
