package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	domainRepo "github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/pkg/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Transaction(ctx context.Context, fn func(repo domainRepo.ReceiptRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&receiptRepository{db: tx})
	})
}

// withItems preloads items in line order
func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_order ASC, id ASC")
	})
}

// Create inserts the receipt and its items
func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return translateError(r.db.WithContext(ctx).Create(receipt).Error)
}

func (r *receiptRepository) GetByID(ctx context.Context, id uint) (*entity.Receipt, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *receiptRepository) GetByNumber(ctx context.Context, number string) (*entity.Receipt, error) {
	return r.first(ctx, "receipt_number = ?", number)
}

func (r *receiptRepository) first(ctx context.Context, query string, args ...interface{}) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).Scopes(withItems).Where(query, args...).First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) LastNumber(ctx context.Context) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&entity.Receipt{}).
		Order("id DESC").
		Limit(1).
		Pluck("receipt_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func (r *receiptRepository) List(ctx context.Context, params pagination.OffsetParams, filter domainRepo.ReceiptFilter) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(receipt_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_nit) LIKE ?",
			term, term, term,
		)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", datatypes.Date(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", datatypes.Date(*filter.DateTo))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.
		Offset(params.Skip).
		Limit(params.Limit).
		Order("created_at DESC, id DESC").
		Find(&receipts).Error

	return receipts, total, err
}

func (r *receiptRepository) ListAll(ctx context.Context) ([]entity.Receipt, error) {
	var receipts []entity.Receipt
	err := r.db.WithContext(ctx).Scopes(withItems).Order("id ASC").Find(&receipts).Error
	return receipts, err
}

// Update writes the receipt columns, including cleared optional ones
func (r *receiptRepository) Update(ctx context.Context, receipt *entity.Receipt) error {
	return translateError(r.db.WithContext(ctx).Omit("Items").Save(receipt).Error)
}

func (r *receiptRepository) ReplaceItems(ctx context.Context, receiptID uint, items []entity.ReceiptItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("receipt_id = ?", receiptID).Delete(&entity.ReceiptItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].ReceiptID = receiptID
	}
	return db.Create(&items).Error
}

func (r *receiptRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&entity.ReceiptItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Receipt{}, id)
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, err
}
