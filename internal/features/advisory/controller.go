package advisory

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

type AdvisoryController struct {
	Service AdvisoryService
}

func NewAdvisoryController(service AdvisoryService) *AdvisoryController {
	return &AdvisoryController{Service: service}
}

// ListAdvisories godoc
// @Summary List advisories
// @Tags advisories
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {array} Advisory
// @Router /api/advisories [get]
func (c *AdvisoryController) ListAdvisories(ctx *fiber.Ctx) error {
	limit := int64(50)
	if l := ctx.Query("limit"); l != "" {
		if n, err := strconv.ParseInt(l, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	advisories, err := c.Service.ListAdvisories(ctxt, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(advisories)
}

// GetAdvisory godoc
// @Summary Get advisory
// @Tags advisories
// @Produce json
// @Param id path string true "Advisory ID"
// @Success 200 {object} Advisory
// @Failure 404 {object} map[string]interface{}
// @Router /api/advisories/{id} [get]
func (c *AdvisoryController) GetAdvisory(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adv, err := c.Service.GetAdvisory(ctxt, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if adv == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Advisory not found"})
	}
	return ctx.JSON(adv)
}
