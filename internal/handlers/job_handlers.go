package handlers

import (
	"context"
	"errors"
	"net/http"

	"mandirdaan/internal/common"
	"mandirdaan/internal/jobs"
	"mandirdaan/internal/jobs/background"
	"mandirdaan/internal/middleware"

	"github.com/labstack/echo/v4"
)

// ReminderScheduler is the part of the background scheduler exposed over HTTP.
type ReminderScheduler interface {
	RunReminderNow(ctx context.Context) (jobs.ReminderRunResult, error)
	GetJobStatus() background.SchedulerStatus
}

type JobHandlers struct {
	scheduler ReminderScheduler
	gate      *middleware.Gate
}

func NewJobHandlers(scheduler ReminderScheduler, gate *middleware.Gate) *JobHandlers {
	return &JobHandlers{scheduler: scheduler, gate: gate}
}

// RunReminders triggers the pledge reminder scan immediately
// @Summary Run pledge reminders now
// @Tags    jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.ReminderRunResult
// @Failure 403 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Router  /jobs/reminders/run [post]
func (h *JobHandlers) RunReminders(c echo.Context) error {
	if _, err := h.gate.RequireAdmin(c); err != nil {
		return common.SendError(c, err)
	}

	result, err := h.scheduler.RunReminderNow(c.Request().Context())
	if errors.Is(err, jobs.ErrReminderRunInProgress) {
		return common.SendError(c, common.NewError(common.ErrConflict, "A reminder run is already in progress"))
	}
	if err != nil {
		return common.SendError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Reminder run completed",
		"result":  result,
	})
}

// GetJobStatus lists scheduled jobs and the last reminder run
// @Summary Job status
// @Tags    jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} background.SchedulerStatus
// @Failure 403 {object} common.ErrorResponse
// @Router  /jobs/status [get]
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	if _, err := h.gate.RequireAdmin(c); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}
