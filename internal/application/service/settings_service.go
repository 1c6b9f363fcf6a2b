package service

import (
	"context"
	"strings"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"gorm.io/datatypes"
)

// SettingsService handles the company-wide settings
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings returns the stored settings, or the defaults when nothing has
// been saved. Reading never writes.
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return entity.DefaultSettings(), nil
	}
	return settings, nil
}

// FieldVisibilityPatch carries only the visibility keys the caller sent
type FieldVisibilityPatch struct {
	CustomerAddress  *bool `json:"customer_address"`
	CustomerPhone    *bool `json:"customer_phone"`
	CustomerEmail    *bool `json:"customer_email"`
	Institution      *bool `json:"institution"`
	AmountInWords    *bool `json:"amount_in_words"`
	Concept          *bool `json:"concept"`
	PaymentMethod    *bool `json:"payment_method"`
	Notes            *bool `json:"notes"`
	Signature        *bool `json:"signature"`
	LineItems        *bool `json:"line_items"`
	LineItemsInPrint *bool `json:"line_items_in_print"`
}

// Apply copies every key that is set onto v
func (p *FieldVisibilityPatch) Apply(v entity.FieldVisibility) entity.FieldVisibility {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.CustomerAddress, p.CustomerAddress)
	set(&v.CustomerPhone, p.CustomerPhone)
	set(&v.CustomerEmail, p.CustomerEmail)
	set(&v.Institution, p.Institution)
	set(&v.AmountInWords, p.AmountInWords)
	set(&v.Concept, p.Concept)
	set(&v.PaymentMethod, p.PaymentMethod)
	set(&v.Notes, p.Notes)
	set(&v.Signature, p.Signature)
	set(&v.LineItems, p.LineItems)
	set(&v.LineItemsInPrint, p.LineItemsInPrint)
	return v
}

// UpdateSettingsInput represents the input for updating settings
type UpdateSettingsInput struct {
	CompanyName     *string
	CompanyInfo     *string
	ReceiptTitle    *string
	FieldVisibility *FieldVisibilityPatch
}

// UpdateSettings patches the provided fields, creating the row on first use
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.Settings, error) {
	var errs []apperror.FieldError
	if input.CompanyName != nil && strings.TrimSpace(*input.CompanyName) == "" {
		errs = append(errs, apperror.FieldError{Field: "company_name", Message: "company_name cannot be empty"})
	}
	if input.ReceiptTitle != nil && strings.TrimSpace(*input.ReceiptTitle) == "" {
		errs = append(errs, apperror.FieldError{Field: "receipt_title", Message: "receipt_title cannot be empty"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		settings.CompanyName = strings.TrimSpace(*input.CompanyName)
	}
	if input.CompanyInfo != nil {
		settings.CompanyInfo = *input.CompanyInfo
	}
	if input.ReceiptTitle != nil {
		settings.ReceiptTitle = strings.TrimSpace(*input.ReceiptTitle)
	}
	if input.FieldVisibility != nil {
		settings.FieldVisibility = datatypes.NewJSONType(input.FieldVisibility.Apply(settings.Visibility()))
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
