package repository

import (
	"context"
	"time"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/sangkips/receipts-api/pkg/pagination"
)

// ReceiptFilter narrows a receipt listing
type ReceiptFilter struct {
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Status   *enum.ReceiptStatus
}

// ReceiptRepository defines the interface for the receipt ledger.
// Every read that returns a receipt also loads its items ordered by line_order.
type ReceiptRepository interface {
	// Transaction runs fn against a repository bound to a single database transaction
	Transaction(ctx context.Context, fn func(repo ReceiptRepository) error) error

	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id uint) (*entity.Receipt, error)
	GetByNumber(ctx context.Context, number string) (*entity.Receipt, error)
	// LastNumber returns the receipt number of the highest id, or "" when empty
	LastNumber(ctx context.Context) (string, error)
	List(ctx context.Context, params pagination.OffsetParams, filter ReceiptFilter) ([]entity.Receipt, int64, error)
	// ListAll returns every receipt with items ordered by id
	ListAll(ctx context.Context) ([]entity.Receipt, error)
	// Update saves the receipt columns without touching items
	Update(ctx context.Context, receipt *entity.Receipt) error
	// ReplaceItems deletes the current items and inserts items in order
	ReplaceItems(ctx context.Context, receiptID uint, items []entity.ReceiptItem) error
	// Delete removes the items then the receipt. It reports false when nothing matched.
	Delete(ctx context.Context, id uint) (bool, error)
}
