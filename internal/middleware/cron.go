package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// CronAuthMiddleware authenticates external cron invocations with a
// shared bearer secret, independent of user JWTs.
func CronAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Cron trigger disabled: no secret configured",
			})
		}

		authHeader := c.Get("Authorization")
		expected := "Bearer " + secret
		if subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
