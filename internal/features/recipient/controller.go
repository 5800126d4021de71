package recipient

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"inteldesk/internal/middleware"
)

type RecipientController struct {
	Service ResolverService
}

func NewRecipientController(service ResolverService) *RecipientController {
	return &RecipientController{Service: service}
}

// Resolve godoc
// @Summary Resolve recipients
// @Description Expand client groups and literal lists into validated, deduplicated recipient lists
// @Tags recipients
// @Accept json
// @Produce json
// @Success 200 {object} Resolved
// @Failure 400 {object} map[string]interface{}
// @Router /api/recipients/resolve [post]
func (c *RecipientController) Resolve(ctx *fiber.Ctx) error {
	var spec Spec
	if err := ctx.BodyParser(&spec); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.ClaimsFromCtx(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resolved, err := c.Service.Resolve(ctxt, claims.Principal(), &spec)
	if err != nil {
		var invalidErr *InvalidAddressError
		if errors.As(err, &invalidErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   invalidErr.Error(),
				"invalid": invalidErr.Invalid,
			})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(resolved)
}

// BulkUpload godoc
// @Summary Upload bulk recipient list
// @Description Parse a CSV/XLSX file into a normalized address list for bulk (bcc) delivery
// @Tags recipients
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/recipients/bulk-upload [post]
func (c *RecipientController) BulkUpload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer file.Close()

	emails, err := ParseBulkFile(file, fileHeader.Filename)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"emails": emails,
		"count":  len(emails),
	})
}
