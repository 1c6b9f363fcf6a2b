package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	infraRepo "github.com/sangkips/receipts-api/internal/infrastructure/repository"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/sangkips/receipts-api/pkg/optional"
	"github.com/shopspring/decimal"
)

// TemplateService handles per-user receipt templates
type TemplateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo repository.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// TemplateItemInput is a prefilled line. Nil quantity means 1, nil price means 0.
type TemplateItemInput struct {
	Description string
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
}

// CreateTemplateInput represents the create template input
type CreateTemplateInput struct {
	Name         string
	Description  *string
	CustomerName *string
	CustomerNIT  *string
	Notes        *string
	Items        []TemplateItemInput
}

// UpdateTemplateInput is a partial template update
type UpdateTemplateInput struct {
	Name         optional.Field[string]
	Description  optional.Field[string]
	CustomerName optional.Field[string]
	CustomerNIT  optional.Field[string]
	Notes        optional.Field[string]
	Items        optional.Field[[]TemplateItemInput]
}

// ListTemplates returns the owner's templates ordered by name
func (s *TemplateService) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]entity.ReceiptTemplate, error) {
	return s.templateRepo.List(infraRepo.WithOwner(ctx, ownerID))
}

// GetTemplate returns one of the owner's templates
func (s *TemplateService) GetTemplate(ctx context.Context, ownerID uuid.UUID, id uint) (*entity.ReceiptTemplate, error) {
	tmpl, err := s.templateRepo.GetByID(infraRepo.WithOwner(ctx, ownerID), id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, apperror.NewNotFoundError("Template")
	}
	return tmpl, nil
}

// CreateTemplate stores a new template for the owner
func (s *TemplateService) CreateTemplate(ctx context.Context, ownerID uuid.UUID, input *CreateTemplateInput) (*entity.ReceiptTemplate, error) {
	var errs []apperror.FieldError
	name := strings.TrimSpace(input.Name)
	if name == "" || len([]rune(name)) > 255 {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "name must be between 1 and 255 characters"})
	}
	items, itemErrs := buildTemplateItems(input.Items)
	errs = append(errs, itemErrs...)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	tmpl := &entity.ReceiptTemplate{
		Name:         name,
		Description:  trimmed(input.Description),
		CustomerName: trimmed(input.CustomerName),
		CustomerNIT:  trimmed(input.CustomerNIT),
		Notes:        input.Notes,
		Items:        items,
	}
	if err := s.templateRepo.Create(infraRepo.WithOwner(ctx, ownerID), tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// UpdateTemplate patches one of the owner's templates
func (s *TemplateService) UpdateTemplate(ctx context.Context, ownerID uuid.UUID, id uint, input *UpdateTemplateInput) (*entity.ReceiptTemplate, error) {
	tmpl, err := s.GetTemplate(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	var errs []apperror.FieldError
	if input.Name.Set {
		name := strings.TrimSpace(input.Name.Value)
		if input.Name.Null || name == "" || len([]rune(name)) > 255 {
			errs = append(errs, apperror.FieldError{Field: "name", Message: "name must be between 1 and 255 characters"})
		}
		tmpl.Name = name
	}
	if input.Items.Set {
		items, itemErrs := buildTemplateItems(input.Items.Value)
		errs = append(errs, itemErrs...)
		tmpl.Items = items
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	setString(&tmpl.Description, input.Description)
	setString(&tmpl.CustomerName, input.CustomerName)
	setString(&tmpl.CustomerNIT, input.CustomerNIT)
	if input.Notes.Set {
		tmpl.Notes = input.Notes.Ptr()
	}

	if err := s.templateRepo.Update(infraRepo.WithOwner(ctx, ownerID), tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// DeleteTemplate removes one of the owner's templates
func (s *TemplateService) DeleteTemplate(ctx context.Context, ownerID uuid.UUID, id uint) error {
	deleted, err := s.templateRepo.Delete(infraRepo.WithOwner(ctx, ownerID), id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("Template")
	}
	return nil
}

func buildTemplateItems(inputs []TemplateItemInput) ([]entity.TemplateItem, []apperror.FieldError) {
	items := make([]entity.TemplateItem, 0, len(inputs))
	var errs []apperror.FieldError
	for i, in := range inputs {
		item := entity.TemplateItem{
			Description: strings.TrimSpace(in.Description),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.Zero,
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.UnitPrice != nil {
			item.UnitPrice = *in.UnitPrice
		}
		if !item.Quantity.IsPositive() {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be greater than 0"})
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].unit_price", i), Message: "unit_price must be greater than or equal to 0"})
		}
		items = append(items, item)
	}
	return items, errs
}
