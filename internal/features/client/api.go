package client

import (
	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ClientApi struct {
	clientController *ClientController
	config           *config.Config
}

func NewClientApi(clientController *ClientController, config *config.Config) *ClientApi {
	return &ClientApi{
		clientController: clientController,
		config:           config,
	}
}

func (h *ClientApi) Setup(app *fiber.App) {
	clients := app.Group("/api/clients", middleware.AuthMiddleware(h.config.SkipAuth))

	clients.Get("/", h.clientController.ListClients)
	clients.Get("/:id", h.clientController.GetClient)

	clients.Post("/", middleware.RequireRole(common_models.RoleAdmin), h.clientController.CreateClient)
	clients.Put("/:id", middleware.RequireRole(common_models.RoleAdmin), h.clientController.UpdateClient)
	clients.Delete("/:id", middleware.RequireRole(common_models.RoleAdmin), h.clientController.DeleteClient)
}
