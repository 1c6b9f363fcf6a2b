package response

import (
	"time"

	"github.com/sangkips/receipts-api/internal/domain/entity"
)

// SettingsResponse is the company settings with decoded field visibility
type SettingsResponse struct {
	ID              uint                   `json:"id"`
	CompanyName     string                 `json:"company_name"`
	CompanyInfo     string                 `json:"company_info"`
	ReceiptTitle    string                 `json:"receipt_title"`
	FieldVisibility entity.FieldVisibility `json:"field_visibility"`
	UpdatedAt       *time.Time             `json:"updated_at"`
}

// NewSettingsResponse converts settings. UpdatedAt is null until the row is saved.
func NewSettingsResponse(s *entity.Settings) SettingsResponse {
	out := SettingsResponse{
		ID:              s.ID,
		CompanyName:     s.CompanyName,
		CompanyInfo:     s.CompanyInfo,
		ReceiptTitle:    s.ReceiptTitle,
		FieldVisibility: s.Visibility(),
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}
