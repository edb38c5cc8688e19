package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"userapi/internals/storage"
)

// OpenMemoryDB opens a migrated in-memory SQLite database that is closed on test cleanup.
// Each name is a separate database.
func OpenMemoryDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := storage.Open(storage.Options{Driver: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close(db) })
	if err := storage.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Logger returns a logger that discards its output.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
