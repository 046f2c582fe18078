package usecase_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"catalog-system/internal/domain/entity"
	"catalog-system/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, resourceID, resourceName, actor string, action entity.ChangeAction) error {
	return m.Called(ctx, resourceID, resourceName, actor, action).Error(0)
}

var errMismatch = errors.New("password mismatch")

// countingHasher records how often it was asked to hash.
type countingHasher struct {
	hashed int
}

func (h *countingHasher) Hash(plain string) (string, error) {
	h.hashed++
	return "hashed:" + plain, nil
}

func (h *countingHasher) Compare(hashed, plain string) error {
	if hashed != "hashed:"+plain {
		return errMismatch
	}
	return nil
}
