package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/sangkips/receipts-api/pkg/email"
	"github.com/sangkips/receipts-api/pkg/pagination"
)

// ReceiptRenderer turns receipts into downloadable files
type ReceiptRenderer interface {
	ReceiptPDF(r *entity.Receipt, settings *entity.Settings) ([]byte, error)
	ReceiptsXLSX(receipts []entity.Receipt) ([]byte, error)
}

// ReceiptMailer delivers a rendered receipt
type ReceiptMailer interface {
	IsConfigured() bool
	SendReceipt(to string, data email.ReceiptMail, pdf []byte) error
}

// DocumentService produces receipt PDFs and spreadsheets and emails them
type DocumentService struct {
	receipts *ReceiptService
	settings *SettingsService
	renderer ReceiptRenderer
	mailer   ReceiptMailer
}

// NewDocumentService creates a new document service
func NewDocumentService(receipts *ReceiptService, settings *SettingsService, renderer ReceiptRenderer, mailer ReceiptMailer) *DocumentService {
	return &DocumentService{
		receipts: receipts,
		settings: settings,
		renderer: renderer,
		mailer:   mailer,
	}
}

// ReceiptPDF returns the receipt and its rendered PDF
func (s *DocumentService) ReceiptPDF(ctx context.Context, id uint) (*entity.Receipt, []byte, error) {
	receipt, err := s.receipts.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.renderer.ReceiptPDF(receipt, settings)
	if err != nil {
		return nil, nil, err
	}
	return receipt, pdf, nil
}

// EmailReceipt sends the receipt PDF to the given address, or to the
// customer's email when to is empty. It returns the address used.
func (s *DocumentService) EmailReceipt(ctx context.Context, id uint, to string) (string, error) {
	if s.mailer == nil || !s.mailer.IsConfigured() {
		return "", apperror.NewAppError(apperror.ErrServiceUnavailable.Code, "Email is not configured")
	}

	receipt, err := s.receipts.Get(ctx, id)
	if err != nil {
		return "", err
	}

	to = strings.TrimSpace(to)
	if to == "" && receipt.CustomerEmail != nil {
		to = strings.TrimSpace(*receipt.CustomerEmail)
	}
	if to == "" {
		return "", apperror.NewFieldError("to", "no recipient: the receipt has no customer email")
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	pdf, err := s.renderer.ReceiptPDF(receipt, settings)
	if err != nil {
		return "", err
	}

	err = s.mailer.SendReceipt(to, email.ReceiptMail{
		ReceiptNumber: receipt.ReceiptNumber,
		CustomerName:  receipt.CustomerName,
		CompanyName:   settings.CompanyName,
		Total:         "Q " + receipt.Total.StringFixed(2),
	}, pdf)
	if err != nil {
		log.Error().Err(err).Str("receipt_number", receipt.ReceiptNumber).Msg("failed to email receipt")
		if errors.Is(err, email.ErrNotConfigured) {
			return "", apperror.ErrServiceUnavailable
		}
		return "", apperror.NewAppError(apperror.ErrServiceUnavailable.Code, "Failed to send email")
	}
	return to, nil
}

// ExportXLSX renders the receipts matching filter, capped at one maximum page
func (s *DocumentService) ExportXLSX(ctx context.Context, filter repository.ReceiptFilter) ([]byte, error) {
	params := &pagination.OffsetParams{Skip: 0, Limit: pagination.MaxLimit}
	result, err := s.receipts.List(ctx, params, filter)
	if err != nil {
		return nil, err
	}
	return s.renderer.ReceiptsXLSX(result.Items)
}
