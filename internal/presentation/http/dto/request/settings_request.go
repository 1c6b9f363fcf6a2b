package request

// FieldVisibilityRequest carries only the visibility keys the caller sent
type FieldVisibilityRequest struct {
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

// UpdateSettingsRequest represents a settings patch
type UpdateSettingsRequest struct {
	CompanyName     *string                 `json:"company_name" binding:"omitempty,max=255"`
	CompanyInfo     *string                 `json:"company_info" binding:"omitempty,max=500"`
	ReceiptTitle    *string                 `json:"receipt_title" binding:"omitempty,max=100"`
	FieldVisibility *FieldVisibilityRequest `json:"field_visibility"`
}
