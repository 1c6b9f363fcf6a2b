package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	// BackupVersion is written to every export
	BackupVersion = "1.0"
	// ImportMessage is returned with every import result
	ImportMessage = "Importación completada"

	dateLayout = "2006-01-02"
)

// BackupDocument is the portable JSON form of the whole ledger. Amounts are
// written as fixed two-decimal strings and dates as strings.
type BackupDocument struct {
	Version      string          `json:"version"`
	CreatedAt    string          `json:"created_at"`
	ReceiptCount int             `json:"receipt_count"`
	Receipts     []BackupReceipt `json:"receipts"`
}

// BackupReceipt is one receipt in a backup document
type BackupReceipt struct {
	ReceiptNumber   string                 `json:"receipt_number"`
	CustomerName    *string                `json:"customer_name"`
	CustomerNIT     *string                `json:"customer_nit"`
	CustomerPhone   *string                `json:"customer_phone"`
	CustomerEmail   *string                `json:"customer_email"`
	CustomerAddress *string                `json:"customer_address"`
	Institution     *string                `json:"institution"`
	Concept         *string                `json:"concept"`
	PaymentMethod   *string                `json:"payment_method"`
	CheckNumber     *string                `json:"check_number"`
	BankAccount     *string                `json:"bank_account"`
	ReceivedByName  *string                `json:"received_by_name"`
	Date            *string                `json:"date"`
	Status          *string                `json:"status"`
	Notes           *string                `json:"notes"`
	Signature       *string                `json:"signature"`
	Subtotal        Amount                 `json:"subtotal"`
	Total           Amount                 `json:"total"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	CreatedAt       *string                `json:"created_at"`
	Items           []BackupItem           `json:"items"`
}

// BackupItem is one line of a backed-up receipt
type BackupItem struct {
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Amount `json:"unit_price"`
	Total       Amount `json:"total"`
	LineOrder   int    `json:"line_order"`
}

// Amount is a backup money or quantity value. It reads JSON numbers, numeric
// strings, null and "" (absent) and always writes a two-decimal string.
type Amount struct {
	decimal.NullDecimal
}

// NewAmount wraps d as a present amount
func NewAmount(d decimal.Decimal) Amount {
	return Amount{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte(`""`)) {
		a.Valid = false
		return nil
	}
	return a.NullDecimal.UnmarshalJSON(data)
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Decimal.StringFixed(2))
}

// Or returns the amount or fallback when it is absent
func (a Amount) Or(fallback decimal.Decimal) decimal.Decimal {
	if !a.Valid {
		return fallback
	}
	return a.Decimal
}

// ImportError records why one record was not imported
type ImportError struct {
	ReceiptNumber string `json:"receipt_number"`
	Error         string `json:"error"`
}

// ImportResult summarises an import run
type ImportResult struct {
	Message        string        `json:"message"`
	Imported       int           `json:"imported"`
	Skipped        int           `json:"skipped"`
	Replaced       int           `json:"replaced"`
	Errors         []ImportError `json:"errors"`
	TotalProcessed int           `json:"total_processed"`
}

// BackupService exports and restores the receipt ledger
type BackupService struct {
	receiptRepo repository.ReceiptRepository
	now         func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(receiptRepo repository.ReceiptRepository) *BackupService {
	return &BackupService{receiptRepo: receiptRepo, now: time.Now}
}

// Export returns every receipt with its items, ordered by id
func (s *BackupService) Export(ctx context.Context) (*BackupDocument, error) {
	receipts, err := s.receiptRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	doc := &BackupDocument{
		Version:      BackupVersion,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
		ReceiptCount: len(receipts),
		Receipts:     make([]BackupReceipt, 0, len(receipts)),
	}
	for i := range receipts {
		doc.Receipts = append(doc.Receipts, toBackupReceipt(&receipts[i]))
	}
	return doc, nil
}

// Import restores receipts from doc. Each record runs in its own
// transaction and a failing record is reported without stopping the run.
// An existing receipt number is skipped when skipExisting is set and
// replaced otherwise.
func (s *BackupService) Import(ctx context.Context, doc *BackupDocument, skipExisting bool) *ImportResult {
	return s.importAll(ctx, len(doc.Receipts), func(i int) (*BackupReceipt, error) {
		return &doc.Receipts[i], nil
	}, skipExisting)
}

// ImportRaw is Import over undecoded records. A record that does not decode
// is reported as an error for that record only.
func (s *BackupService) ImportRaw(ctx context.Context, records []json.RawMessage, skipExisting bool) *ImportResult {
	return s.importAll(ctx, len(records), func(i int) (*BackupReceipt, error) {
		return decodeBackupReceipt(records[i])
	}, skipExisting)
}

func (s *BackupService) importAll(ctx context.Context, n int, record func(i int) (*BackupReceipt, error), skipExisting bool) *ImportResult {
	result := &ImportResult{
		Message:        ImportMessage,
		Errors:         []ImportError{},
		TotalProcessed: n,
	}

	for i := 0; i < n; i++ {
		rec, err := record(i)
		outcome := importCreated
		if err == nil {
			outcome, err = s.importOne(ctx, rec, skipExisting)
		}
		if err != nil {
			number := strings.TrimSpace(rec.ReceiptNumber)
			if number == "" {
				number = "unknown"
			}
			log.Warn().Err(err).Str("receipt_number", number).Msg("backup record not imported")
			result.Errors = append(result.Errors, ImportError{ReceiptNumber: number, Error: err.Error()})
			continue
		}

		switch outcome {
		case importSkipped:
			result.Skipped++
		case importReplaced:
			result.Replaced++
			result.Imported++
		default:
			result.Imported++
		}
	}
	return result
}

// decodeBackupReceipt always returns a record so a decode failure can still
// be reported under its receipt number.
func decodeBackupReceipt(raw json.RawMessage) (*BackupReceipt, error) {
	var rec BackupReceipt
	if err := json.Unmarshal(raw, &rec); err != nil {
		var head struct {
			ReceiptNumber string `json:"receipt_number"`
		}
		_ = json.Unmarshal(raw, &head)
		return &BackupReceipt{ReceiptNumber: head.ReceiptNumber}, fmt.Errorf("invalid record: %w", err)
	}
	return &rec, nil
}

type importOutcome int

const (
	importCreated importOutcome = iota
	importSkipped
	importReplaced
)

func (s *BackupService) importOne(ctx context.Context, record *BackupReceipt, skipExisting bool) (importOutcome, error) {
	number := strings.TrimSpace(record.ReceiptNumber)
	if number == "" {
		return 0, errors.New("receipt_number is required")
	}

	receipt, err := s.fromBackupReceipt(record)
	if err != nil {
		return 0, err
	}
	receipt.ReceiptNumber = number

	outcome := importCreated
	err = s.receiptRepo.Transaction(ctx, func(repo repository.ReceiptRepository) error {
		existing, err := repo.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if existing != nil {
			if skipExisting {
				outcome = importSkipped
				return nil
			}
			outcome = importReplaced
			receipt.ID = existing.ID
			if receipt.CreatedAt.IsZero() {
				receipt.CreatedAt = existing.CreatedAt
			}
			if err := repo.Update(ctx, receipt); err != nil {
				return err
			}
			return repo.ReplaceItems(ctx, existing.ID, receipt.Items)
		}
		return repo.Create(ctx, receipt)
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return 0, fmt.Errorf("receipt number %s already exists", number)
	}
	return outcome, err
}

func toBackupReceipt(r *entity.Receipt) BackupReceipt {
	items := make([]entity.ReceiptItem, len(r.Items))
	copy(items, r.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].LineOrder < items[j].LineOrder })

	out := BackupReceipt{
		ReceiptNumber:   r.ReceiptNumber,
		CustomerName:    &r.CustomerName,
		CustomerNIT:     r.CustomerNIT,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		CustomerAddress: r.CustomerAddress,
		Institution:     r.Institution,
		Concept:         r.Concept,
		CheckNumber:     r.CheckNumber,
		BankAccount:     r.BankAccount,
		ReceivedByName:  r.ReceivedByName,
		Date:            strPtr(time.Time(r.Date).Format(dateLayout)),
		Status:          strPtr(r.Status.String()),
		Notes:           r.Notes,
		Signature:       r.Signature,
		Subtotal:        NewAmount(r.Subtotal),
		Total:           NewAmount(r.Total),
		CustomFields:    r.CustomFields,
		CreatedAt:       strPtr(r.CreatedAt.UTC().Format(time.RFC3339)),
		Items:           make([]BackupItem, 0, len(items)),
	}
	if r.PaymentMethod != nil {
		out.PaymentMethod = strPtr(string(*r.PaymentMethod))
	}
	for _, item := range items {
		out.Items = append(out.Items, BackupItem{
			Description: item.Description,
			Quantity:    NewAmount(item.Quantity),
			UnitPrice:   NewAmount(item.UnitPrice),
			Total:       NewAmount(item.Total),
			LineOrder:   item.LineOrder,
		})
	}
	return out
}

func (s *BackupService) fromBackupReceipt(b *BackupReceipt) (*entity.Receipt, error) {
	name := "Unknown"
	if b.CustomerName != nil && strings.TrimSpace(*b.CustomerName) != "" {
		name = strings.TrimSpace(*b.CustomerName)
	}

	date := DateOnly(s.now())
	if b.Date != nil && *b.Date != "" {
		raw := *b.Date
		if len(raw) > len(dateLayout) {
			raw = raw[:len(dateLayout)]
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", *b.Date)
		}
		date = DateOnly(t)
	}

	status := enum.ReceiptStatusCompleted
	if b.Status != nil {
		status = enum.ParseReceiptStatusOrDefault(*b.Status)
	}

	receipt := &entity.Receipt{
		CustomerName:    name,
		CustomerNIT:     b.CustomerNIT,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		CustomerAddress: b.CustomerAddress,
		Institution:     b.Institution,
		Concept:         b.Concept,
		CheckNumber:     b.CheckNumber,
		BankAccount:     b.BankAccount,
		ReceivedByName:  b.ReceivedByName,
		Date:            date,
		Status:          status,
		Notes:           b.Notes,
		Signature:       b.Signature,
		CustomFields:    b.CustomFields,
	}
	if b.PaymentMethod != nil {
		m := enum.PaymentMethod(*b.PaymentMethod)
		if m.IsValid() {
			receipt.PaymentMethod = &m
		}
	}
	receipt.ApplyPaymentRules()

	if b.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *b.CreatedAt); err == nil {
			receipt.CreatedAt = t
		}
	}

	for _, bi := range b.Items {
		receipt.Items = append(receipt.Items, fromBackupItem(bi))
	}

	if len(receipt.Items) > 0 {
		receipt.RecalculateTotals()
	} else {
		subtotal := b.Subtotal.Or(decimal.Zero).Round(amountPlaces)
		receipt.Subtotal = subtotal
		receipt.Total = subtotal
	}
	return receipt, nil
}

func fromBackupItem(b BackupItem) entity.ReceiptItem {
	item := entity.ReceiptItem{
		Description: b.Description,
		Quantity:    b.Quantity.Or(decimal.NewFromInt(1)).Round(amountPlaces),
		UnitPrice:   b.UnitPrice.Or(decimal.Zero).Round(amountPlaces),
		Total:       b.Total.Or(decimal.Zero).Round(amountPlaces),
		LineOrder:   b.LineOrder,
	}
	if item.Total.IsZero() {
		item.ComputeTotal()
	}
	return item
}

func strPtr(s string) *string {
	return &s
}
