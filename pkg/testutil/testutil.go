package testutil

import (
	"testing"

	"github.com/jinzhu/gorm"

	"movie-watchlist/pkg/database"
)

// OpenDB opens a named in-memory SQLite database, migrates the schema and
// installs the seed data (admin account plus demo watchlist). The shared
// cache keeps the database alive across pooled connections. Each test should
// pass a unique name to stay isolated.
func OpenDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := database.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Seed(db); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return db
}
