package handlers

import (
	"context"
	"net/http"
	"strconv"

	"mandirdaan/internal/common"
	"mandirdaan/internal/middleware"
	"mandirdaan/internal/models"
	"mandirdaan/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BreakdownService reports per-category totals.
type BreakdownService interface {
	ByType(ctx context.Context, tenantID uuid.UUID) ([]models.TypeBreakdown, error)
}

// DonationHandlers handles HTTP requests for the donation ledger
type DonationHandlers struct {
	donationService services.DonationService
	receiptService  services.ReceiptService
	breakdown       BreakdownService
	gate            *middleware.Gate
}

// NewDonationHandlers creates a new donation handlers instance
func NewDonationHandlers(donationService services.DonationService, receiptService services.ReceiptService, breakdown BreakdownService, gate *middleware.Gate) *DonationHandlers {
	return &DonationHandlers{
		donationService: donationService,
		receiptService:  receiptService,
		breakdown:       breakdown,
		gate:            gate,
	}
}

// CreateDonation records a donation and assigns its receipt number
// @Summary Record donation
// @Tags    donations
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body models.CreateDonationRequest true "Donation"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Router  /donations [post]
func (h *DonationHandlers) CreateDonation(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	ctx := c.Request().Context()

	var req models.CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	donation, err := h.donationService.Record(ctx, claims, req)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Donation recorded successfully",
		"donation": donation,
	})
}

// ListDonations lists the mandir's donations, newest first
// @Summary List donations
// @Tags    donations
// @Produce json
// @Security BearerAuth
// @Param   status    query string false "Pledged or Received"
// @Param   type      query string false "Donation type"
// @Param   startDate query string false "Inclusive start date"
// @Param   endDate   query string false "Inclusive end date"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Router  /donations [get]
func (h *DonationHandlers) ListDonations(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}

	donations, err := h.donationService.List(c.Request().Context(), claims.TenantID, services.ListDonationsQuery{
		Status:    c.QueryParam("status"),
		Type:      c.QueryParam("type"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	})
	if err != nil {
		return common.SendError(c, err)
	}
	if donations == nil {
		donations = []*models.Donation{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"donations": donations})
}

// GetDonation returns one donation of the caller's mandir
// @Summary Get donation
// @Tags    donations
// @Produce json
// @Security BearerAuth
// @Param   id path string true "Donation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} common.ErrorResponse
// @Router  /donations/{id} [get]
func (h *DonationHandlers) GetDonation(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c.Param("id"), "Donation")
	if err != nil {
		return common.SendError(c, err)
	}

	donation, err := h.donationService.Get(c.Request().Context(), claims.TenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"donation": donation})
}

// UpdatePaymentStatus marks a donation pledged or received
// @Summary Update payment status
// @Tags    donations
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id   path string true "Donation ID"
// @Param   body body models.UpdateStatusRequest true "Status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Router  /donations/{id} [patch]
func (h *DonationHandlers) UpdatePaymentStatus(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c.Param("id"), "Donation")
	if err != nil {
		return common.SendError(c, err)
	}

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	donation, err := h.donationService.UpdateStatus(c.Request().Context(), claims.TenantID, id, req.PaymentStatus)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Payment status updated successfully",
		"donation": donation,
	})
}

// GetSummary returns counts and totals by payment status
// @Summary Donation summary
// @Tags    donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router  /donations/stats/summary [get]
func (h *DonationHandlers) GetSummary(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}

	stats, err := h.donationService.Summarize(c.Request().Context(), claims.TenantID)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"stats": stats})
}

// GetBreakdown returns totals for each donation type
// @Summary Donation totals by type
// @Tags    donations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router  /donations/stats/by-type [get]
func (h *DonationHandlers) GetBreakdown(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}

	breakdown, err := h.breakdown.ByType(c.Request().Context(), claims.TenantID)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"breakdown": breakdown})
}

// DownloadReceipt streams the printable receipt
// @Summary Download receipt PDF
// @Tags    donations
// @Produce application/pdf
// @Security BearerAuth
// @Param   id path string true "Donation ID"
// @Success 200 {file} file
// @Failure 404 {object} common.ErrorResponse
// @Router  /donations/{id}/receipt [get]
func (h *DonationHandlers) DownloadReceipt(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c.Param("id"), "Donation")
	if err != nil {
		return common.SendError(c, err)
	}

	doc, err := h.receiptService.Render(c.Request().Context(), claims.TenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "inline; filename="+strconv.Quote(doc.FileName))
	return c.Blob(http.StatusOK, "application/pdf", doc.Content)
}

// PublishReceipt stores the receipt and returns a temporary download link
// @Summary Publish receipt
// @Tags    donations
// @Produce json
// @Security BearerAuth
// @Param   id path string true "Donation ID"
// @Success 200 {object} services.PublishedReceipt
// @Failure 404 {object} common.ErrorResponse
// @Failure 503 {object} common.ErrorResponse
// @Router  /donations/{id}/receipt [post]
func (h *DonationHandlers) PublishReceipt(c echo.Context) error {
	claims, err := h.gate.Authenticate(c)
	if err != nil {
		return common.SendError(c, err)
	}
	id, err := common.ParseID(c.Param("id"), "Donation")
	if err != nil {
		return common.SendError(c, err)
	}

	receipt, err := h.receiptService.Publish(c.Request().Context(), claims.TenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, receipt)
}
