package request

import (
	"github.com/oapi-codegen/nullable"
	"github.com/shopspring/decimal"
)

// TemplateItemRequest is a prefilled line of a template
type TemplateItemRequest struct {
	Description string           `json:"description" binding:"required,max=1000"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// CreateTemplateRequest represents a template creation request
type CreateTemplateRequest struct {
	Name         string                `json:"name" binding:"required,max=255"`
	Description  *string               `json:"description" binding:"omitempty,max=500"`
	CustomerName *string               `json:"customer_name" binding:"omitempty,max=255"`
	CustomerNIT  *string               `json:"customer_nit" binding:"omitempty,max=50"`
	Notes        *string               `json:"notes"`
	Items        []TemplateItemRequest `json:"items" binding:"dive"`
}

// UpdateTemplateRequest is a partial template update
type UpdateTemplateRequest struct {
	Name         nullable.Nullable[string]                `json:"name,omitempty"`
	Description  nullable.Nullable[string]                `json:"description,omitempty"`
	CustomerName nullable.Nullable[string]                `json:"customer_name,omitempty"`
	CustomerNIT  nullable.Nullable[string]                `json:"customer_nit,omitempty"`
	Notes        nullable.Nullable[string]                `json:"notes,omitempty"`
	Items        nullable.Nullable[[]TemplateItemRequest] `json:"items,omitempty"`
}
