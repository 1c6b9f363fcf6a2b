package response

import (
	"time"

	"github.com/sangkips/receipts-api/internal/domain/entity"
)

// TemplateItemResponse is a template line with string amounts
type TemplateItemResponse struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// TemplateResponse is a full template
type TemplateResponse struct {
	ID           uint                   `json:"id"`
	Name         string                 `json:"name"`
	Description  *string                `json:"description"`
	CustomerName *string                `json:"customer_name"`
	CustomerNIT  *string                `json:"customer_nit"`
	Notes        *string                `json:"notes"`
	Items        []TemplateItemResponse `json:"items"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// TemplateSummaryResponse is a template row in a listing
type TemplateSummaryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTemplateResponse converts a template entity
func NewTemplateResponse(t *entity.ReceiptTemplate) TemplateResponse {
	items := make([]TemplateItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TemplateItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity.StringFixed(2),
			UnitPrice:   item.UnitPrice.StringFixed(2),
		})
	}
	return TemplateResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		CustomerName: t.CustomerName,
		CustomerNIT:  t.CustomerNIT,
		Notes:        t.Notes,
		Items:        items,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTemplateSummaries converts a template listing
func NewTemplateSummaries(templates []entity.ReceiptTemplate) []TemplateSummaryResponse {
	out := make([]TemplateSummaryResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, TemplateSummaryResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}
