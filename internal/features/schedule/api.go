package schedule

import (
	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleApi struct {
	scheduleController *ScheduleController
	config             *config.Config
}

func NewScheduleApi(scheduleController *ScheduleController, config *config.Config) *ScheduleApi {
	return &ScheduleApi{
		scheduleController: scheduleController,
		config:             config,
	}
}

func (h *ScheduleApi) Setup(app *fiber.App) {
	emails := app.Group("/api/scheduled-emails",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin))

	emails.Get("/", h.scheduleController.ListScheduledEmails)
	emails.Get("/:id", h.scheduleController.GetScheduledEmail)
	emails.Post("/", h.scheduleController.CreateScheduledEmail)
	emails.Put("/:id", h.scheduleController.UpdateScheduledEmail)
	emails.Post("/:id/cancel", h.scheduleController.CancelScheduledEmail)
	emails.Post("/:id/send-now", h.scheduleController.SendScheduledEmailNow)
	emails.Delete("/:id", h.scheduleController.DeleteScheduledEmail)

	// External trigger for the dispatch sweep, shared-secret gated.
	app.Post("/api/cron/process-emails",
		middleware.CronAuthMiddleware(h.config.CronSecret),
		h.scheduleController.ProcessDueEmails)
}
