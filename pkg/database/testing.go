package database

import (
	"path/filepath"
	"testing"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/config"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// OpenTestDB returns a migrated sqlite database living in t.TempDir().
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := InitDB(config.Database{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
