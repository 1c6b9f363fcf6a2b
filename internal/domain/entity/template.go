package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TemplateItem is a prefilled line on a receipt template
type TemplateItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ReceiptTemplate is a reusable set of receipt defaults owned by one user
type ReceiptTemplate struct {
	ID           uint                              `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID                         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string                            `gorm:"size:255;not null" json:"name"`
	Description  *string                           `gorm:"size:500" json:"description,omitempty"`
	CustomerName *string                           `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerNIT  *string                           `gorm:"column:customer_nit;size:50" json:"customer_nit,omitempty"`
	Notes        *string                           `gorm:"type:text" json:"notes,omitempty"`
	Items        datatypes.JSONSlice[TemplateItem] `json:"items"`
	CreatedAt    time.Time                         `json:"created_at"`
	UpdatedAt    time.Time                         `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for the ReceiptTemplate model
func (ReceiptTemplate) TableName() string {
	return "receipt_templates"
}
