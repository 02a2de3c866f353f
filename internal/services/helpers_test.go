package services

import (
	"context"
	"errors"
	"testing"

	"github.com/binamralamsal/quiz-score-maintainer/internal/directory"
	"github.com/binamralamsal/quiz-score-maintainer/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Participant{}, &models.Quiz{}, &models.Score{}))
	return db
}

type fakeDirectory struct {
	users    map[string]directory.User // keyed by handle including "@"
	err      error
	beforeFn func() // runs before each lookup, simulates concurrent activity
}

func (f *fakeDirectory) LookupHandle(_ context.Context, handle string) (*directory.User, error) {
	if f.beforeFn != nil {
		f.beforeFn()
	}
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[handle]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return &u, nil
}

var errLookupDown = errors.New("lookup service down")

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func strPtr(s string) *string {
	return &s
}
