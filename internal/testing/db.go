// Package testing provides testing utilities and helpers for the qlab project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/pedrorrivero/qlab/internal/database"
)

// NewTestDB creates a temporary SQLite database for testing. Returns the
// database instance and a cleanup function that closes the connection and
// removes the file. Each call gets its own isolated database.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path: tmpPath,
		Name: name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	cleaned := false
	return db, func() {
		if cleaned {
			return
		}
		cleaned = true
		_ = db.Close()
		_ = os.Remove(tmpPath)
		_ = os.Remove(tmpPath + "-wal")
		_ = os.Remove(tmpPath + "-shm")
	}
}
