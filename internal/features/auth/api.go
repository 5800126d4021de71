package auth

import (
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	authController *AuthController
	config         *config.Config
}

func NewAuthApi(authController *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		authController: authController,
		config:         config,
	}
}

func (h *AuthApi) Setup(app *fiber.App) {
	grp := app.Group("/api/auth")

	grp.Post("/login", h.authController.Login)
	grp.Get("/me", middleware.AuthMiddleware(h.config.SkipAuth), h.authController.Me)
}
