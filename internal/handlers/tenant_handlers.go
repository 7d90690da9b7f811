package handlers

import (
	"net/http"

	"mandirdaan/internal/common"
	"mandirdaan/internal/models"
	"mandirdaan/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TenantHandlers serves mandir registration and the public mandir list.
type TenantHandlers struct {
	tenantService services.TenantService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

type RegisterTenantResponse struct {
	Message  string          `json:"message"`
	MandirID uuid.UUID       `json:"mandirId"`
	Admin    *models.Profile `json:"admin,omitempty"`
}

// ListTenants returns the id and name of every mandir
// @Summary List mandirs
// @Tags    mandirs
// @Produce json
// @Success 200 {array} models.TenantSummary
// @Router  /mandirs/list [get]
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	tenants, err := h.tenantService.List(c.Request().Context())
	if err != nil {
		return common.SendError(c, err)
	}
	if tenants == nil {
		tenants = []models.TenantSummary{}
	}
	return c.JSON(http.StatusOK, tenants)
}

// RegisterTenant registers a mandir and, optionally, its first admin
// @Summary Register mandir
// @Tags    mandirs
// @Accept  json
// @Produce json
// @Param   body body models.RegisterTenantRequest true "Mandir"
// @Success 201 {object} RegisterTenantResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router  /mandirs/register [post]
func (h *TenantHandlers) RegisterTenant(c echo.Context) error {
	var req models.RegisterTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.tenantService.Register(c.Request().Context(), req)
	if err != nil {
		return common.SendError(c, err)
	}

	resp := RegisterTenantResponse{
		Message:  "Mandir registered successfully",
		MandirID: result.Tenant.ID,
	}
	if result.Admin != nil {
		profile := result.Admin.Profile()
		resp.Admin = &profile
	}
	return c.JSON(http.StatusCreated, resp)
}
