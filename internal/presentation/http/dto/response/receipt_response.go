package response

import (
	"time"

	"github.com/sangkips/receipts-api/internal/domain/entity"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/sangkips/receipts-api/pkg/pagination"
)

// ReceiptItemResponse is a receipt line with amounts as fixed-point strings
type ReceiptItemResponse struct {
	ID          uint      `json:"id"`
	ReceiptID   uint      `json:"receipt_id"`
	Description string    `json:"description"`
	Quantity    string    `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	Total       string    `json:"total"`
	LineOrder   int       `json:"line_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReceiptResponse is a full receipt
type ReceiptResponse struct {
	ID              uint                   `json:"id"`
	ReceiptNumber   string                 `json:"receipt_number"`
	CustomerName    string                 `json:"customer_name"`
	CustomerNIT     *string                `json:"customer_nit"`
	CustomerPhone   *string                `json:"customer_phone"`
	CustomerEmail   *string                `json:"customer_email"`
	CustomerAddress *string                `json:"customer_address"`
	Institution     *string                `json:"institution"`
	Concept         *string                `json:"concept"`
	PaymentMethod   *enum.PaymentMethod    `json:"payment_method"`
	CheckNumber     *string                `json:"check_number"`
	BankAccount     *string                `json:"bank_account"`
	ReceivedByName  *string                `json:"received_by_name"`
	Date            string                 `json:"date"`
	Status          enum.ReceiptStatus     `json:"status"`
	Notes           *string                `json:"notes"`
	Signature       *string                `json:"signature"`
	Subtotal        string                 `json:"subtotal"`
	Total           string                 `json:"total"`
	CustomFields    map[string]interface{} `json:"custom_fields"`
	Items           []ReceiptItemResponse  `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ReceiptSummaryResponse is a receipt row in a listing
type ReceiptSummaryResponse struct {
	ID            uint               `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	CustomerName  string             `json:"customer_name"`
	CustomerNIT   *string            `json:"customer_nit"`
	Date          string             `json:"date"`
	Status        enum.ReceiptStatus `json:"status"`
	Total         string             `json:"total"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewReceiptResponse converts a receipt entity
func NewReceiptResponse(r *entity.Receipt) ReceiptResponse {
	items := make([]ReceiptItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, ReceiptItemResponse{
			ID:          item.ID,
			ReceiptID:   item.ReceiptID,
			Description: item.Description,
			Quantity:    item.Quantity.StringFixed(2),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.Total.StringFixed(2),
			LineOrder:   item.LineOrder,
			CreatedAt:   item.CreatedAt,
		})
	}

	return ReceiptResponse{
		ID:              r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		CustomerName:    r.CustomerName,
		CustomerNIT:     r.CustomerNIT,
		CustomerPhone:   r.CustomerPhone,
		CustomerEmail:   r.CustomerEmail,
		CustomerAddress: r.CustomerAddress,
		Institution:     r.Institution,
		Concept:         r.Concept,
		PaymentMethod:   r.PaymentMethod,
		CheckNumber:     r.CheckNumber,
		BankAccount:     r.BankAccount,
		ReceivedByName:  r.ReceivedByName,
		Date:            formatDate(r),
		Status:          r.Status,
		Notes:           r.Notes,
		Signature:       r.Signature,
		Subtotal:        r.Subtotal.StringFixed(2),
		Total:           r.Total.StringFixed(2),
		CustomFields:    r.CustomFields,
		Items:           items,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// NewReceiptSummaryPage converts a page of receipts into summaries
func NewReceiptSummaryPage(result *pagination.PaginatedResult[entity.Receipt]) *pagination.PaginatedResult[ReceiptSummaryResponse] {
	return pagination.MapResult(result, func(r entity.Receipt) ReceiptSummaryResponse {
		return ReceiptSummaryResponse{
			ID:            r.ID,
			ReceiptNumber: r.ReceiptNumber,
			CustomerName:  r.CustomerName,
			CustomerNIT:   r.CustomerNIT,
			Date:          formatDate(&r),
			Status:        r.Status,
			Total:         r.Total.StringFixed(2),
			CreatedAt:     r.CreatedAt,
		}
	})
}

func formatDate(r *entity.Receipt) string {
	return time.Time(r.Date).Format(time.DateOnly)
}
