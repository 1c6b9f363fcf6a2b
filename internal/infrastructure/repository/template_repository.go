package repository

import (
	"context"
	"errors"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	domainRepo "github.com/sangkips/receipts-api/internal/domain/repository"
	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new receipt template repository
func NewTemplateRepository(db *gorm.DB) domainRepo.TemplateRepository {
	return &templateRepository{db: db}
}

// Create stores a template for the owner in ctx
func (r *templateRepository) Create(ctx context.Context, tmpl *entity.ReceiptTemplate) error {
	ownerID, ok := GetOwnerID(ctx)
	if !ok {
		return errors.New("template owner missing from context")
	}
	tmpl.UserID = ownerID
	return r.db.WithContext(ctx).Omit("User").Create(tmpl).Error
}

func (r *templateRepository) GetByID(ctx context.Context, id uint) (*entity.ReceiptTemplate, error) {
	var tmpl entity.ReceiptTemplate
	err := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).First(&tmpl, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// List returns the owner's templates ordered by name
func (r *templateRepository) List(ctx context.Context) ([]entity.ReceiptTemplate, error) {
	var templates []entity.ReceiptTemplate
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ctx)).
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

// Update writes every editable column, including cleared ones
func (r *templateRepository) Update(ctx context.Context, tmpl *entity.ReceiptTemplate) error {
	result := r.db.WithContext(ctx).
		Model(tmpl).
		Scopes(OwnerScope(ctx)).
		Select("name", "description", "customer_name", "customer_nit", "notes", "items", "updated_at").
		Updates(tmpl)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Scopes(OwnerScope(ctx)).Delete(&entity.ReceiptTemplate{}, id)
	return result.RowsAffected > 0, result.Error
}
