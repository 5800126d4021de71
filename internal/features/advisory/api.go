package advisory

import (
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AdvisoryApi struct {
	advisoryController *AdvisoryController
	config             *config.Config
}

func NewAdvisoryApi(advisoryController *AdvisoryController, config *config.Config) *AdvisoryApi {
	return &AdvisoryApi{
		advisoryController: advisoryController,
		config:             config,
	}
}

func (h *AdvisoryApi) Setup(app *fiber.App) {
	advisories := app.Group("/api/advisories", middleware.AuthMiddleware(h.config.SkipAuth))

	advisories.Get("/", h.advisoryController.ListAdvisories)
	advisories.Get("/:id", h.advisoryController.GetAdvisory)
}
