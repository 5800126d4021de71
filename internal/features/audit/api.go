package audit

import (
	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	auditController *AuditController
	config          *config.Config
}

func NewAuditApi(auditController *AuditController, config *config.Config) *AuditApi {
	return &AuditApi{
		auditController: auditController,
		config:          config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	grp := app.Group("/api/audit",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin))

	grp.Get("/", h.auditController.ListAuditLogs)
}
