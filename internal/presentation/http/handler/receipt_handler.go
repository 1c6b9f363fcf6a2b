package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"github.com/sangkips/receipts-api/internal/domain/repository"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/sangkips/receipts-api/pkg/optional"
	"github.com/sangkips/receipts-api/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReceiptHandler handles receipt HTTP requests
type ReceiptHandler struct {
	receiptService  *service.ReceiptService
	documentService *service.DocumentService
	printerService  *service.PrinterService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(
	receiptService *service.ReceiptService,
	documentService *service.DocumentService,
	printerService *service.PrinterService,
) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService:  receiptService,
		documentService: documentService,
		printerService:  printerService,
	}
}

// NextNumber previews the next receipt number
// @Summary Next receipt number
// @Tags receipts
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /receipts/next-number [get]
func (h *ReceiptHandler) NextNumber(c *gin.Context) {
	number, err := h.receiptService.NextNumber(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Next receipt number", gin.H{"next_number": number})
}

// Create handles receipt creation
// @Summary Create receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param request body request.CreateReceiptRequest true "Receipt data"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req request.CreateReceiptRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	input := &service.CreateReceiptInput{
		CustomerName:    req.CustomerName,
		CustomerNIT:     req.CustomerNIT,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		Institution:     req.Institution,
		Concept:         req.Concept,
		PaymentMethod:   req.PaymentMethod,
		CheckNumber:     req.CheckNumber,
		BankAccount:     req.BankAccount,
		ReceivedByName:  req.ReceivedByName,
		Status:          req.Status,
		Notes:           req.Notes,
		Signature:       req.Signature,
		CustomFields:    req.CustomFields,
		Items:           toItemInputs(req.Items),
	}
	if req.Date != nil {
		input.Date = &req.Date.Time
	}

	receipt, err := h.receiptService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt created successfully", response.NewReceiptResponse(receipt))
}

// List handles listing receipts
// @Summary List receipts
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Page size (max 1000)"
// @Param search query string false "Matches number, customer name or NIT"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param status query string false "draft, completed, paid or cancelled"
// @Success 200 {object} response.APIResponse
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	params, filter, err := receiptQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.receiptService.List(c.Request.Context(), params, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Receipts retrieved successfully", response.NewReceiptSummaryPage(result))
}

// Get handles fetching one receipt
// @Summary Get receipt
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.receiptService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", response.NewReceiptResponse(receipt))
}

// Update handles a partial receipt update
// @Summary Update receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Receipt ID"
// @Param request body request.UpdateReceiptRequest true "Changed fields"
// @Success 200 {object} response.APIResponse
// @Router /receipts/{id} [put]
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateReceiptRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.receiptService.Update(c.Request.Context(), id, toUpdateInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt updated successfully", response.NewReceiptResponse(receipt))
}

// Delete handles receipt deletion
// @Summary Delete receipt
// @Tags receipts
// @Security BearerAuth
// @Param id path int true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.receiptService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt deleted successfully", nil)
}

// PDF downloads the rendered receipt
// @Summary Receipt PDF
// @Tags receipts
// @Security BearerAuth
// @Produce application/pdf
// @Param id path int true "Receipt ID"
// @Router /receipts/{id}/pdf [get]
func (h *ReceiptHandler) PDF(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, pdf, err := h.documentService.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s.pdf"`, disposition, receipt.ReceiptNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Email sends the receipt PDF by email
// @Summary Email receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Receipt ID"
// @Param request body request.EmailReceiptRequest false "Recipient"
// @Success 200 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /receipts/{id}/email [post]
func (h *ReceiptHandler) Email(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.EmailReceiptRequest
	if c.Request.ContentLength != 0 {
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	}

	to, err := h.documentService.EmailReceipt(c.Request.Context(), id, req.To)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt sent successfully", gin.H{"to": to})
}

// Print sends the receipt to the thermal printer
// @Summary Print receipt
// @Tags receipts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /receipts/{id}/print [post]
func (h *ReceiptHandler) Print(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.printerService.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		if receipt != nil {
			response.Error(c, apperror.NewAppError(http.StatusServiceUnavailable, err.Error()))
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt sent to printer", gin.H{"receipt_number": receipt.ReceiptNumber})
}

// ExportXLSX downloads the filtered receipt list as a spreadsheet
// @Summary Export receipts
// @Tags receipts
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /receipts/export.xlsx [get]
func (h *ReceiptHandler) ExportXLSX(c *gin.Context) {
	_, filter, err := receiptQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.documentService.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("recibos_%s.xlsx", time.Now().Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func receiptQuery(c *gin.Context) (*pagination.OffsetParams, repository.ReceiptFilter, error) {
	var q request.ReceiptListQuery
	var filter repository.ReceiptFilter
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, filter, apperror.NewBadRequestError("Invalid query parameters")
	}

	params := pagination.ParseOffset(q.Skip, q.Limit)
	filter.Search = strings.TrimSpace(q.Search)

	if q.DateFrom != "" {
		t, err := request.ParseDate(q.DateFrom)
		if err != nil {
			return nil, filter, apperror.NewBadRequestError("date_from: " + err.Error())
		}
		filter.DateFrom = &t
	}
	if q.DateTo != "" {
		t, err := request.ParseDate(q.DateTo)
		if err != nil {
			return nil, filter, apperror.NewBadRequestError("date_to: " + err.Error())
		}
		filter.DateTo = &t
	}
	if q.Status != "" {
		status, err := enum.ParseReceiptStatus(q.Status)
		if err != nil {
			return nil, filter, apperror.NewBadRequestError(err.Error())
		}
		filter.Status = &status
	}
	return params, filter, nil
}

func toItemInputs(items []request.ReceiptItemRequest) []service.ReceiptItemInput {
	out := make([]service.ReceiptItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.ReceiptItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}

func toUpdateInput(req *request.UpdateReceiptRequest) *service.UpdateReceiptInput {
	return &service.UpdateReceiptInput{
		CustomerName:    optional.FromNullable(req.CustomerName),
		CustomerNIT:     optional.FromNullable(req.CustomerNIT),
		CustomerPhone:   optional.FromNullable(req.CustomerPhone),
		CustomerEmail:   optional.FromNullable(req.CustomerEmail),
		CustomerAddress: optional.FromNullable(req.CustomerAddress),
		Institution:     optional.FromNullable(req.Institution),
		Concept:         optional.FromNullable(req.Concept),
		PaymentMethod:   optional.FromNullable(req.PaymentMethod),
		CheckNumber:     optional.FromNullable(req.CheckNumber),
		BankAccount:     optional.FromNullable(req.BankAccount),
		ReceivedByName:  optional.FromNullable(req.ReceivedByName),
		Date:            optional.Map(req.Date, func(d request.Date) time.Time { return d.Time }),
		Status:          optional.FromNullable(req.Status),
		Notes:           optional.FromNullable(req.Notes),
		Signature:       optional.FromNullable(req.Signature),
		CustomFields:    optional.FromNullable(req.CustomFields),
		Items:           optional.Map(req.Items, toItemInputs),
	}
}
