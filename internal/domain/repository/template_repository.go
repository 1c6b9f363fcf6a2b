package repository

import (
	"context"

	"github.com/sangkips/receipts-api/internal/domain/entity"
)

// TemplateRepository defines the interface for receipt templates.
// The owner is taken from the context, see WithOwner in the infrastructure package.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *entity.ReceiptTemplate) error
	GetByID(ctx context.Context, id uint) (*entity.ReceiptTemplate, error)
	List(ctx context.Context) ([]entity.ReceiptTemplate, error)
	Update(ctx context.Context, tmpl *entity.ReceiptTemplate) error
	Delete(ctx context.Context, id uint) (bool, error)
}
