package handlers

import "github.com/labstack/echo/v4"

// Handlers groups every handler mounted under /api.
type Handlers struct {
	Auth      *AuthHandlers
	Tenants   *TenantHandlers
	Donations *DonationHandlers
	Health    *HealthHandlers
	Jobs      *JobHandlers
}

// RegisterRoutes mounts the API. Authentication is checked inside each
// handler, so every route is registered on the same group.
func RegisterRoutes(api *echo.Group, h Handlers) {
	api.GET("/health", h.Health.HealthCheck)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/users", h.Auth.CreateUser)
	auth.GET("/users", h.Auth.ListUsers)
	auth.GET("/me", h.Auth.Me)

	mandirs := api.Group("/mandirs")
	mandirs.GET("/list", h.Tenants.ListTenants)
	mandirs.POST("/register", h.Tenants.RegisterTenant)

	donations := api.Group("/donations")
	donations.POST("", h.Donations.CreateDonation)
	donations.GET("", h.Donations.ListDonations)
	donations.GET("/stats/summary", h.Donations.GetSummary)
	donations.GET("/stats/by-type", h.Donations.GetBreakdown)
	donations.GET("/:id", h.Donations.GetDonation)
	donations.PATCH("/:id", h.Donations.UpdatePaymentStatus)
	donations.GET("/:id/receipt", h.Donations.DownloadReceipt)
	donations.POST("/:id/receipt", h.Donations.PublishReceipt)

	if h.Jobs != nil {
		jobs := api.Group("/jobs")
		jobs.POST("/reminders/run", h.Jobs.RunReminders)
		jobs.GET("/status", h.Jobs.GetJobStatus)
	}
}
