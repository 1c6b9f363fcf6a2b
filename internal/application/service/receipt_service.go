package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/sangkips/receipts-api/pkg/optional"
	"github.com/sangkips/receipts-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// maxNumberAttempts bounds the retries after a receipt number collision
const maxNumberAttempts = 5

// amountPlaces is the scale of stored quantities and prices
const amountPlaces = 2

var validate = validator.New()

// ReceiptService handles the receipt ledger
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	numberer    *ReceiptNumberer
}

// NewReceiptService creates a new receipt service
func NewReceiptService(receiptRepo repository.ReceiptRepository, numberer *ReceiptNumberer) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		numberer:    numberer,
	}
}

// ReceiptItemInput represents a line item in a create or update
type ReceiptItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateReceiptInput represents the create receipt input
type CreateReceiptInput struct {
	CustomerName    string
	CustomerNIT     *string
	CustomerPhone   *string
	CustomerEmail   *string
	CustomerAddress *string
	Institution     *string
	Concept         *string
	PaymentMethod   *string
	CheckNumber     *string
	BankAccount     *string
	ReceivedByName  *string
	Date            *time.Time
	Status          *enum.ReceiptStatus
	Notes           *string
	Signature       *string
	CustomFields    map[string]interface{}
	Items           []ReceiptItemInput
}

// UpdateReceiptInput is a partial update. Absent fields are left alone and
// null clears optional fields.
type UpdateReceiptInput struct {
	CustomerName    optional.Field[string]
	CustomerNIT     optional.Field[string]
	CustomerPhone   optional.Field[string]
	CustomerEmail   optional.Field[string]
	CustomerAddress optional.Field[string]
	Institution     optional.Field[string]
	Concept         optional.Field[string]
	PaymentMethod   optional.Field[string]
	CheckNumber     optional.Field[string]
	BankAccount     optional.Field[string]
	ReceivedByName  optional.Field[string]
	Date            optional.Field[time.Time]
	Status          optional.Field[enum.ReceiptStatus]
	Notes           optional.Field[string]
	Signature       optional.Field[string]
	CustomFields    optional.Field[map[string]interface{}]
	Items           optional.Field[[]ReceiptItemInput]
}

// NextNumber previews the number the next receipt would get
func (s *ReceiptService) NextNumber(ctx context.Context) (string, error) {
	return s.numberer.GenerateNext(ctx)
}

// Create validates the input, allocates a number and stores the receipt with
// its items in one transaction.
func (s *ReceiptService) Create(ctx context.Context, input *CreateReceiptInput) (*entity.Receipt, error) {
	receipt, err := buildReceipt(input)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		resetIDs(receipt)
		err = s.receiptRepo.Transaction(ctx, func(repo repository.ReceiptRepository) error {
			number, err := s.numberer.next(ctx, repo, attempt)
			if err != nil {
				return err
			}
			receipt.ReceiptNumber = number
			return repo.Create(ctx, receipt)
		})
		if !errors.Is(err, repository.ErrDuplicateKey) {
			break
		}
		log.Warn().
			Str("receipt_number", receipt.ReceiptNumber).
			Int("attempt", attempt+1).
			Msg("receipt number already taken, retrying")
	}
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, apperror.NewAppError(http.StatusConflict, "Could not allocate a unique receipt number, please retry")
	}
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, receipt.ID)
}

// Get returns a receipt with its items in line order
func (s *ReceiptService) Get(ctx context.Context, id uint) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// List returns receipt summaries ordered newest first
func (s *ReceiptService) List(ctx context.Context, params *pagination.OffsetParams, filter repository.ReceiptFilter) (*pagination.PaginatedResult[entity.Receipt], error) {
	params.Validate()
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Invalid status %q", *filter.Status))
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		return nil, apperror.NewBadRequestError("date_from must not be after date_to")
	}

	receipts, total, err := s.receiptRepo.List(ctx, *params, filter)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(receipts, pagination.NewPagination(params, total)), nil
}

// Update applies a partial update. When items are present they replace the
// old ones and the totals are recomputed, all in one transaction.
func (s *ReceiptService) Update(ctx context.Context, id uint, input *UpdateReceiptInput) (*entity.Receipt, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	err := s.receiptRepo.Transaction(ctx, func(repo repository.ReceiptRepository) error {
		receipt, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.NewNotFoundError("Receipt")
		}

		applyUpdate(receipt, input)

		if input.Items.HasValue() {
			receipt.SetItems(buildItems(input.Items.Value))
			if err := repo.ReplaceItems(ctx, receipt.ID, receipt.Items); err != nil {
				return err
			}
		}
		return repo.Update(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a receipt and its items
func (s *ReceiptService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.receiptRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NewNotFoundError("Receipt")
	}
	return nil
}

func buildReceipt(input *CreateReceiptInput) (*entity.Receipt, error) {
	var errs []apperror.FieldError

	name := strings.TrimSpace(input.CustomerName)
	institution := trimmed(input.Institution)
	if name == "" {
		if institution == nil {
			errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "customer_name is required unless institution is set"})
		} else {
			name = *institution
		}
	}

	if email := trimmed(input.CustomerEmail); email != nil && !validEmail(*email) {
		errs = append(errs, invalidEmail)
	}

	var method *enum.PaymentMethod
	if input.PaymentMethod != nil {
		m, fieldErr := parsePaymentMethod(*input.PaymentMethod)
		if fieldErr != nil {
			errs = append(errs, *fieldErr)
		}
		method = m
	}

	status := enum.ReceiptStatusCompleted
	if input.Status != nil {
		if !input.Status.IsValid() {
			errs = append(errs, apperror.FieldError{Field: "status", Message: "status must be one of draft, completed, paid, cancelled"})
		}
		status = *input.Status
	}

	errs = append(errs, validateItems(input.Items)...)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	receipt := &entity.Receipt{
		CustomerName:    name,
		CustomerNIT:     trimmed(input.CustomerNIT),
		CustomerPhone:   trimmed(input.CustomerPhone),
		CustomerEmail:   trimmed(input.CustomerEmail),
		CustomerAddress: trimmed(input.CustomerAddress),
		Institution:     institution,
		Concept:         trimmed(input.Concept),
		PaymentMethod:   method,
		CheckNumber:     trimmed(input.CheckNumber),
		BankAccount:     trimmed(input.BankAccount),
		ReceivedByName:  trimmed(input.ReceivedByName),
		Date:            DateOnly(date),
		Status:          status,
		Notes:           input.Notes,
		Signature:       input.Signature,
		CustomFields:    input.CustomFields,
	}
	receipt.ApplyPaymentRules()
	receipt.SetItems(buildItems(input.Items))
	return receipt, nil
}

func validateUpdate(input *UpdateReceiptInput) error {
	var errs []apperror.FieldError

	if input.CustomerName.Set && (input.CustomerName.Null || strings.TrimSpace(input.CustomerName.Value) == "") {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "customer_name cannot be empty"})
	}
	if input.CustomerEmail.HasValue() {
		if email := trimmed(&input.CustomerEmail.Value); email != nil && !validEmail(*email) {
			errs = append(errs, invalidEmail)
		}
	}
	if input.Date.Set && input.Date.Null {
		errs = append(errs, apperror.FieldError{Field: "date", Message: "date cannot be null"})
	}
	if input.Status.Set {
		if input.Status.Null || !input.Status.Value.IsValid() {
			errs = append(errs, apperror.FieldError{Field: "status", Message: "status must be one of draft, completed, paid, cancelled"})
		}
	}
	if input.PaymentMethod.HasValue() {
		if _, fieldErr := parsePaymentMethod(input.PaymentMethod.Value); fieldErr != nil {
			errs = append(errs, *fieldErr)
		}
	}
	if input.Items.Set {
		if input.Items.Null {
			errs = append(errs, apperror.FieldError{Field: "items", Message: "items cannot be null"})
		} else {
			errs = append(errs, validateItems(input.Items.Value)...)
		}
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

func applyUpdate(r *entity.Receipt, in *UpdateReceiptInput) {
	if in.CustomerName.HasValue() {
		r.CustomerName = strings.TrimSpace(in.CustomerName.Value)
	}
	setString(&r.CustomerNIT, in.CustomerNIT)
	setString(&r.CustomerPhone, in.CustomerPhone)
	setString(&r.CustomerEmail, in.CustomerEmail)
	setString(&r.CustomerAddress, in.CustomerAddress)
	setString(&r.Institution, in.Institution)
	setString(&r.Concept, in.Concept)
	setString(&r.CheckNumber, in.CheckNumber)
	setString(&r.BankAccount, in.BankAccount)
	setString(&r.ReceivedByName, in.ReceivedByName)
	if in.Notes.Set {
		r.Notes = in.Notes.Ptr()
	}
	if in.Signature.Set {
		r.Signature = in.Signature.Ptr()
	}
	if in.PaymentMethod.Set {
		r.PaymentMethod = nil
		if in.PaymentMethod.HasValue() {
			r.PaymentMethod, _ = parsePaymentMethod(in.PaymentMethod.Value)
		}
	}
	if in.Date.HasValue() {
		r.Date = DateOnly(in.Date.Value)
	}
	if in.Status.HasValue() {
		r.Status = in.Status.Value
	}
	if in.CustomFields.Set {
		r.CustomFields = in.CustomFields.Value
	}
	r.ApplyPaymentRules()
}

func validateItems(items []ReceiptItemInput) []apperror.FieldError {
	if len(items) == 0 {
		return []apperror.FieldError{{Field: "items", Message: "receipt must have at least one item"}}
	}

	var errs []apperror.FieldError
	for i, item := range items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" || len([]rune(desc)) > 1000 {
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "description must be between 1 and 1000 characters",
			})
		}
		switch {
		case !item.Quantity.IsPositive():
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be greater than 0",
			})
		case !hasScale(item.Quantity):
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must have at most 2 decimal places",
			})
		}
		switch {
		case item.UnitPrice.IsNegative():
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].unit_price", i),
				Message: "unit_price must be greater than or equal to 0",
			})
		case !hasScale(item.UnitPrice):
			errs = append(errs, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].unit_price", i),
				Message: "unit_price must have at most 2 decimal places",
			})
		}
	}
	return errs
}

// hasScale reports whether d fits the two-decimal columns without rounding
func hasScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(amountPlaces))
}

var invalidEmail = apperror.FieldError{Field: "customer_email", Message: "must be a valid email address"}

func validEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

func buildItems(inputs []ReceiptItemInput) []entity.ReceiptItem {
	items := make([]entity.ReceiptItem, len(inputs))
	for i, in := range inputs {
		items[i] = entity.ReceiptItem{
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		}
	}
	return items
}

func parsePaymentMethod(s string) (*enum.PaymentMethod, *apperror.FieldError) {
	m := enum.PaymentMethod(strings.TrimSpace(s))
	if !m.IsValid() {
		return nil, &apperror.FieldError{
			Field:   "payment_method",
			Message: "payment_method must be Cheque, Transferencia, Efectivo, or Otro",
		}
	}
	return &m, nil
}

// resetIDs clears the ids a failed insert may have assigned
func resetIDs(r *entity.Receipt) {
	r.ID = 0
	for i := range r.Items {
		r.Items[i].ID = 0
		r.Items[i].ReceiptID = 0
	}
}

func setString(dst **string, f optional.Field[string]) {
	if !f.Set {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	*dst = trimmed(&f.Value)
}

// trimmed returns nil for nil or blank strings
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// DateOnly drops the clock part of t, keeping its calendar day in UTC
func DateOnly(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
