// Package testutil provides database fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
)

// NewDB opens a migrated SQLite database in a per-test temp directory.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "notevault_test.db")
	db, err := repositories.Open("sqlite", dsn, gormlogger.Silent)
	require.NoError(t, err, "open test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewStore wraps NewDB in a repositories.Store.
func NewStore(t testing.TB) *repositories.Store {
	t.Helper()
	return repositories.NewStore(NewDB(t))
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, store *repositories.Store, username, email string) *models.User {
	t.Helper()

	u := &models.User{Username: username, Email: email, Password: "not-a-real-hash"}
	require.NoError(t, store.Read(t.Context()).Users.Create(u), "create user %s", username)
	return u
}
