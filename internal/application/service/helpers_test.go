package service

import (
	"errors"
	"testing"

	"github.com/sangkips/receipts-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/receipts-api/internal/infrastructure/repository"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestReceiptService(t *testing.T) (*ReceiptService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	repo := infraRepo.NewReceiptRepository(db)
	return NewReceiptService(repo, NewReceiptNumberer(repo, "", 0)), db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func str(s string) *string {
	return &s
}

func item(desc, qty, price string) ReceiptItemInput {
	return ReceiptItemInput{Description: desc, Quantity: dec(qty), UnitPrice: dec(price)}
}

// requireAppError asserts err is an AppError with the given status
func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func fieldNames(appErr *apperror.AppError) []string {
	names := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		names = append(names, fe.Field)
	}
	return names
}
