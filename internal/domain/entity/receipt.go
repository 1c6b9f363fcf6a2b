package entity

import (
	"time"

	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Receipt is a recorded sale with its ordered line items
type Receipt struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReceiptNumber string `gorm:"size:20;uniqueIndex;not null" json:"receipt_number"`

	// Customer information
	CustomerName    string  `gorm:"size:255;not null;index" json:"customer_name"`
	CustomerNIT     *string `gorm:"column:customer_nit;size:50;index" json:"customer_nit,omitempty"`
	CustomerPhone   *string `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerEmail   *string `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerAddress *string `gorm:"size:500" json:"customer_address,omitempty"`

	// Print fields
	Institution    *string             `gorm:"size:255" json:"institution,omitempty"`
	Concept        *string             `gorm:"size:500" json:"concept,omitempty"`
	PaymentMethod  *enum.PaymentMethod `gorm:"size:50" json:"payment_method,omitempty"`
	CheckNumber    *string             `gorm:"size:100" json:"check_number,omitempty"`
	BankAccount    *string             `gorm:"size:100" json:"bank_account,omitempty"`
	ReceivedByName *string             `gorm:"size:255" json:"received_by_name,omitempty"`

	Date      datatypes.Date     `gorm:"not null;index" json:"date"`
	Status    enum.ReceiptStatus `gorm:"size:20;not null;default:'completed';index" json:"status"`
	Notes     *string            `gorm:"type:text" json:"notes,omitempty"`
	Signature *string            `gorm:"type:text" json:"signature,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	CustomFields datatypes.JSONMap `json:"custom_fields,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []ReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// ApplyPaymentRules clears the bank fields unless the payment method uses them.
func (r *Receipt) ApplyPaymentRules() {
	if r.PaymentMethod == nil || !r.PaymentMethod.UsesBankDetails() {
		r.CheckNumber = nil
		r.BankAccount = nil
	}
}

// SetItems replaces the items, numbering them 0..n-1 and recomputing totals.
func (r *Receipt) SetItems(items []ReceiptItem) {
	for i := range items {
		items[i].LineOrder = i
		items[i].ComputeTotal()
	}
	r.Items = items
	r.RecalculateTotals()
}

// RecalculateTotals sets subtotal to the sum of the item totals. There is no
// tax or discount, so total always equals subtotal.
func (r *Receipt) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range r.Items {
		subtotal = subtotal.Add(item.Total)
	}
	r.Subtotal = subtotal.Round(2)
	r.Total = r.Subtotal
}

// ReceiptItem is one line on a receipt
type ReceiptItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReceiptID   uint            `gorm:"not null;index:ix_receipt_items_receipt_line,priority:1" json:"receipt_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	LineOrder   int             `gorm:"not null;default:0;index:ix_receipt_items_receipt_line,priority:2" json:"line_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the table name for the ReceiptItem model
func (ReceiptItem) TableName() string {
	return "receipt_items"
}

// ComputeTotal sets total = quantity × unit_price rounded to 2 places
func (i *ReceiptItem) ComputeTotal() {
	i.Total = i.Quantity.Mul(i.UnitPrice).Round(2)
}
