// Package storetest opens throwaway SQLite databases for tests.
package storetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/judyrop/storefront/store"
)

// NewDB returns a migrated in-memory database private to the calling test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := store.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewStore is NewDB wrapped in a *store.Store.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	return store.New(NewDB(t))
}
