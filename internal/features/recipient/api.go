package recipient

import (
	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RecipientApi struct {
	recipientController *RecipientController
	config              *config.Config
}

func NewRecipientApi(recipientController *RecipientController, config *config.Config) *RecipientApi {
	return &RecipientApi{
		recipientController: recipientController,
		config:              config,
	}
}

func (h *RecipientApi) Setup(app *fiber.App) {
	grp := app.Group("/api/recipients", middleware.AuthMiddleware(h.config.SkipAuth))

	grp.Post("/resolve", h.recipientController.Resolve)
	grp.Post("/bulk-upload", middleware.RequireRole(common_models.RoleAdmin), h.recipientController.BulkUpload)
}
