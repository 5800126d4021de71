package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListAuditLogs godoc
// @Summary List audit log entries
// @Tags audit
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {array} AuditLog
// @Router /api/audit [get]
func (c *AuditController) ListAuditLogs(ctx *fiber.Ctx) error {
	limit := int64(100)
	if l := ctx.Query("limit"); l != "" {
		if n, err := strconv.ParseInt(l, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := c.Service.List(ctxt, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(entries)
}
