package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipts-api/pkg/optional"
)

// TemplateHandler handles the caller's receipt templates
type TemplateHandler struct {
	templateService *service.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// List returns the caller's templates ordered by name
// @Summary List templates
// @Tags templates
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Templates retrieved successfully", response.NewTemplateSummaries(templates))
}

// Get returns one template
// @Summary Get template
// @Tags templates
// @Security BearerAuth
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	tmpl, err := h.templateService.GetTemplate(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Template retrieved successfully", response.NewTemplateResponse(tmpl))
}

// Create stores a new template
// @Summary Create template
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateTemplateRequest true "Template data"
// @Success 201 {object} response.APIResponse
// @Router /templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.CreateTemplateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	tmpl, err := h.templateService.CreateTemplate(c.Request.Context(), user.ID, &service.CreateTemplateInput{
		Name:         req.Name,
		Description:  req.Description,
		CustomerName: req.CustomerName,
		CustomerNIT:  req.CustomerNIT,
		Notes:        req.Notes,
		Items:        toTemplateItems(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Template created successfully", response.NewTemplateResponse(tmpl))
}

// Update patches a template
// @Summary Update template
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body request.UpdateTemplateRequest true "Changed fields"
// @Success 200 {object} response.APIResponse
// @Router /templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateTemplateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	input := &service.UpdateTemplateInput{
		Name:         optional.FromNullable(req.Name),
		Description:  optional.FromNullable(req.Description),
		CustomerName: optional.FromNullable(req.CustomerName),
		CustomerNIT:  optional.FromNullable(req.CustomerNIT),
		Notes:        optional.FromNullable(req.Notes),
		Items:        optional.Map(req.Items, toTemplateItems),
	}

	tmpl, err := h.templateService.UpdateTemplate(c.Request.Context(), user.ID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Template updated successfully", response.NewTemplateResponse(tmpl))
}

// Delete removes a template
// @Summary Delete template
// @Tags templates
// @Security BearerAuth
// @Param id path int true "Template ID"
// @Success 200 {object} response.APIResponse
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), user.ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Template deleted successfully", nil)
}

func toTemplateItems(items []request.TemplateItemRequest) []service.TemplateItemInput {
	out := make([]service.TemplateItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.TemplateItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return out
}
