// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/database"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewStore returns a local file store rooted in a temp dir.
func NewStore(t *testing.T) *storage.Local {
	t.Helper()
	return storage.NewLocal(t.TempDir())
}

// CreateUser inserts an operator and returns it.
func CreateUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Username: username, Email: username + "@example.com", PasswordHash: "x", Role: "MANAGER"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// StageFile writes a temp upload and returns its URL.
func StageFile(t *testing.T, store storage.Store, name string) string {
	t.Helper()
	url, err := store.Save(context.Background(), storage.TempFolder, name, "image/jpeg", strings.NewReader("img"))
	require.NoError(t, err)
	return url
}
