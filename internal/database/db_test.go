package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
		Name: "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewCreatesDatabase(t *testing.T) {
	db := newTestDB(t)

	assert.Equal(t, "test", db.Name())
	assert.NotEmpty(t, db.Path())
	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.WALCheckpoint(""))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	schema := `CREATE TABLE IF NOT EXISTS items (id TEXT PRIMARY KEY, value INTEGER NOT NULL);`
	require.NoError(t, db.Migrate(schema))
	require.NoError(t, db.Migrate(schema))

	_, err := db.Exec(`INSERT INTO items (id, value) VALUES (?, ?)`, "a", 1)
	assert.NoError(t, err)
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(`CREATE TABLE IF NOT EXISTS items (id TEXT PRIMARY KEY);`))

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO items (id) VALUES ('committed')`)
			return err
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items WHERE id = 'committed'`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			if _, err := tx.Exec(`INSERT INTO items (id) VALUES ('rolled-back')`); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items WHERE id = 'rolled-back'`).Scan(&count))
		assert.Equal(t, 0, count)
	})
}
