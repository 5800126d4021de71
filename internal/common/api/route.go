package common_api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature API so that Fx can collect
// them into a group and register them in one pass.
type Route interface {
	Setup(app *fiber.App)
}
