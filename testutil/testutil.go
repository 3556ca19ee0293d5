// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mazzeh-api/config"
)

// NewDB returns a migrated in-memory sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.InitDB(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Logger returns an entry that writes nowhere.
func Logger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
