package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SettingsID is the primary key of the only settings row
const SettingsID uint = 1

// Defaults used when no settings row has been saved yet
const (
	DefaultCompanyName  = "EMPRESA"
	DefaultCompanyInfo  = "Dirección de la empresa | Tel: 0000-0000"
	DefaultReceiptTitle = "RECIBO"
)

// FieldVisibility toggles which receipt fields are shown on screen and paper
type FieldVisibility struct {
	CustomerAddress  bool `json:"customer_address"`
	CustomerPhone    bool `json:"customer_phone"`
	CustomerEmail    bool `json:"customer_email"`
	Institution      bool `json:"institution"`
	AmountInWords    bool `json:"amount_in_words"`
	Concept          bool `json:"concept"`
	PaymentMethod    bool `json:"payment_method"`
	Notes            bool `json:"notes"`
	Signature        bool `json:"signature"`
	LineItems        bool `json:"line_items"`
	LineItemsInPrint bool `json:"line_items_in_print"`
}

// DefaultFieldVisibility shows everything
func DefaultFieldVisibility() FieldVisibility {
	return FieldVisibility{
		CustomerAddress:  true,
		CustomerPhone:    true,
		CustomerEmail:    true,
		Institution:      true,
		AmountInWords:    true,
		Concept:          true,
		PaymentMethod:    true,
		Notes:            true,
		Signature:        true,
		LineItems:        true,
		LineItemsInPrint: true,
	}
}

// Settings is the company-wide configuration, stored as a single row with id 1
type Settings struct {
	ID              uint                                `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CompanyName     string                              `gorm:"size:255;not null" json:"company_name"`
	CompanyInfo     string                              `gorm:"size:500;not null" json:"company_info"`
	ReceiptTitle    string                              `gorm:"size:100;not null" json:"receipt_title"`
	FieldVisibility datatypes.JSONType[FieldVisibility] `json:"field_visibility"`
	CreatedAt       time.Time                           `json:"created_at"`
	UpdatedAt       time.Time                           `json:"updated_at"`
}

// DefaultSettings returns an unsaved settings row with the default values
func DefaultSettings() *Settings {
	return &Settings{
		ID:              SettingsID,
		CompanyName:     DefaultCompanyName,
		CompanyInfo:     DefaultCompanyInfo,
		ReceiptTitle:    DefaultReceiptTitle,
		FieldVisibility: datatypes.NewJSONType(DefaultFieldVisibility()),
	}
}

// Visibility returns the decoded field visibility
func (s *Settings) Visibility() FieldVisibility {
	return s.FieldVisibility.Data()
}

// TableName returns the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}
