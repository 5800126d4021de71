package user

import (
	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	userController *UserController
	config         *config.Config
}

func NewUserApi(userController *UserController, config *config.Config) *UserApi {
	return &UserApi{
		userController: userController,
		config:         config,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin))

	users.Post("/", h.userController.CreateUser)
	users.Get("/", h.userController.ListUsers)
}
