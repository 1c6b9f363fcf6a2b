package request

import (
	"github.com/oapi-codegen/nullable"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReceiptItemRequest is one line of a receipt
type ReceiptItemRequest struct {
	Description string          `json:"description" binding:"required,max=1000"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateReceiptRequest represents a receipt creation request
type CreateReceiptRequest struct {
	CustomerName    string                 `json:"customer_name" binding:"max=255"`
	CustomerNIT     *string                `json:"customer_nit" binding:"omitempty,max=50"`
	CustomerPhone   *string                `json:"customer_phone" binding:"omitempty,max=50"`
	CustomerEmail   *string                `json:"customer_email" binding:"omitempty,email,max=255"`
	CustomerAddress *string                `json:"customer_address" binding:"omitempty,max=500"`
	Institution     *string                `json:"institution" binding:"omitempty,max=255"`
	Concept         *string                `json:"concept" binding:"omitempty,max=500"`
	PaymentMethod   *string                `json:"payment_method" binding:"omitempty,max=50"`
	CheckNumber     *string                `json:"check_number" binding:"omitempty,max=100"`
	BankAccount     *string                `json:"bank_account" binding:"omitempty,max=100"`
	ReceivedByName  *string                `json:"received_by_name" binding:"omitempty,max=255"`
	Date            *Date                  `json:"date"`
	Status          *enum.ReceiptStatus    `json:"status"`
	Notes           *string                `json:"notes"`
	Signature       *string                `json:"signature"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	Items           []ReceiptItemRequest   `json:"items" binding:"required,min=1,dive"`
}

// UpdateReceiptRequest is a partial update. Each key may be absent, null or set.
type UpdateReceiptRequest struct {
	CustomerName    nullable.Nullable[string]                 `json:"customer_name,omitempty"`
	CustomerNIT     nullable.Nullable[string]                 `json:"customer_nit,omitempty"`
	CustomerPhone   nullable.Nullable[string]                 `json:"customer_phone,omitempty"`
	CustomerEmail   nullable.Nullable[string]                 `json:"customer_email,omitempty"`
	CustomerAddress nullable.Nullable[string]                 `json:"customer_address,omitempty"`
	Institution     nullable.Nullable[string]                 `json:"institution,omitempty"`
	Concept         nullable.Nullable[string]                 `json:"concept,omitempty"`
	PaymentMethod   nullable.Nullable[string]                 `json:"payment_method,omitempty"`
	CheckNumber     nullable.Nullable[string]                 `json:"check_number,omitempty"`
	BankAccount     nullable.Nullable[string]                 `json:"bank_account,omitempty"`
	ReceivedByName  nullable.Nullable[string]                 `json:"received_by_name,omitempty"`
	Date            nullable.Nullable[Date]                   `json:"date,omitempty"`
	Status          nullable.Nullable[enum.ReceiptStatus]     `json:"status,omitempty"`
	Notes           nullable.Nullable[string]                 `json:"notes,omitempty"`
	Signature       nullable.Nullable[string]                 `json:"signature,omitempty"`
	CustomFields    nullable.Nullable[map[string]interface{}] `json:"custom_fields,omitempty"`
	Items           nullable.Nullable[[]ReceiptItemRequest]   `json:"items,omitempty"`
}

// ReceiptListQuery holds the list filters
type ReceiptListQuery struct {
	Skip     string `form:"skip"`
	Limit    string `form:"limit"`
	Search   string `form:"search"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status"`
}

// EmailReceiptRequest picks the recipient. An empty address means the
// customer's email.
type EmailReceiptRequest struct {
	To string `json:"to" binding:"omitempty,email"`
}
