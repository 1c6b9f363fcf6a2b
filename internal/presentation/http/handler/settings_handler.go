package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles company settings
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the settings or the defaults
// @Summary Get settings
// @Tags settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Settings retrieved successfully", response.NewSettingsResponse(settings))
}

// UpdateSettings patches the settings
// @Summary Update settings
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateSettingsRequest true "Changed settings"
// @Success 200 {object} response.APIResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	input := &service.UpdateSettingsInput{
		CompanyName:  req.CompanyName,
		CompanyInfo:  req.CompanyInfo,
		ReceiptTitle: req.ReceiptTitle,
	}
	if v := req.FieldVisibility; v != nil {
		input.FieldVisibility = &service.FieldVisibilityPatch{
			CustomerAddress:  v.CustomerAddress,
			CustomerPhone:    v.CustomerPhone,
			CustomerEmail:    v.CustomerEmail,
			Institution:      v.Institution,
			AmountInWords:    v.AmountInWords,
			Concept:          v.Concept,
			PaymentMethod:    v.PaymentMethod,
			Notes:            v.Notes,
			Signature:        v.Signature,
			LineItems:        v.LineItems,
			LineItemsInPrint: v.LineItemsInPrint,
		}
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Settings updated successfully", response.NewSettingsResponse(settings))
}
