package schedule

import (
	"context"
	"errors"
	"time"

	"inteldesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleController struct {
	Service    ScheduleService
	Dispatcher *Dispatcher
}

func NewScheduleController(service ScheduleService, dispatcher *Dispatcher) *ScheduleController {
	return &ScheduleController{Service: service, Dispatcher: dispatcher}
}

// mapError translates service errors to HTTP responses. Validation
// issues are returned individually so the UI can show them per field.
func mapError(ctx *fiber.Ctx, err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"issues": vErr.Issues,
		})
	}
	if errors.Is(err, ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if errors.Is(err, ErrNotEditable) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// CreateScheduledEmail godoc
// @Summary Schedule an advisory email
// @Tags scheduled-emails
// @Accept json
// @Produce json
// @Success 201 {object} ScheduledEmail
// @Router /api/scheduled-emails [post]
func (c *ScheduleController) CreateScheduledEmail(ctx *fiber.Ctx) error {
	var req ScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.ClaimsFromCtx(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email, err := c.Service.Create(ctxt, claims.Principal(), &req)
	if err != nil {
		return mapError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(email)
}

// ListScheduledEmails godoc
// @Summary List scheduled emails
// @Tags scheduled-emails
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} ScheduledEmail
// @Router /api/scheduled-emails [get]
func (c *ScheduleController) ListScheduledEmails(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	emails, err := c.Service.ListByStatus(ctxt, ctx.Query("status"))
	if err != nil {
		return mapError(ctx, err)
	}
	return ctx.JSON(emails)
}

// GetScheduledEmail godoc
// @Summary Get a scheduled email
// @Tags scheduled-emails
// @Produce json
// @Param id path string true "Scheduled email ID"
// @Success 200 {object} ScheduledEmail
// @Router /api/scheduled-emails/{id} [get]
func (c *ScheduleController) GetScheduledEmail(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	email, err := c.Service.Get(ctxt, ctx.Params("id"))
	if err != nil {
		return mapError(ctx, err)
	}
	return ctx.JSON(email)
}

// UpdateScheduledEmail godoc
// @Summary Update a pending scheduled email
// @Tags scheduled-emails
// @Accept json
// @Produce json
// @Param id path string true "Scheduled email ID"
// @Success 200 {object} ScheduledEmail
// @Router /api/scheduled-emails/{id} [put]
func (c *ScheduleController) UpdateScheduledEmail(ctx *fiber.Ctx) error {
	var req ScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.ClaimsFromCtx(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email, err := c.Service.Update(ctxt, claims.Principal(), ctx.Params("id"), &req)
	if err != nil {
		return mapError(ctx, err)
	}
	return ctx.JSON(email)
}

// CancelScheduledEmail godoc
// @Summary Cancel a pending scheduled email
// @Tags scheduled-emails
// @Produce json
// @Param id path string true "Scheduled email ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/scheduled-emails/{id}/cancel [post]
func (c *ScheduleController) CancelScheduledEmail(ctx *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Service.Cancel(ctxt, claims.Principal(), ctx.Params("id")); err != nil {
		return mapError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Scheduled email cancelled"})
}

// SendScheduledEmailNow godoc
// @Summary Send a pending scheduled email immediately
// @Tags scheduled-emails
// @Produce json
// @Param id path string true "Scheduled email ID"
// @Success 200 {object} DispatchDetail
// @Router /api/scheduled-emails/{id}/send-now [post]
func (c *ScheduleController) SendScheduledEmailNow(ctx *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	// Delivery can take a full transport timeout.
	ctxt, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	detail, err := c.Service.SendNow(ctxt, claims.Principal(), ctx.Params("id"))
	if err != nil {
		return mapError(ctx, err)
	}
	return ctx.JSON(detail)
}

// DeleteScheduledEmail godoc
// @Summary Delete a scheduled email record
// @Tags scheduled-emails
// @Produce json
// @Param id path string true "Scheduled email ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/scheduled-emails/{id} [delete]
func (c *ScheduleController) DeleteScheduledEmail(ctx *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Service.Delete(ctxt, claims.Principal(), ctx.Params("id")); err != nil {
		return mapError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Scheduled email deleted"})
}

// ProcessDueEmails godoc
// @Summary Dispatch every due pending email
// @Tags cron
// @Produce json
// @Success 200 {object} DispatchSummary
// @Router /api/cron/process-emails [post]
func (c *ScheduleController) ProcessDueEmails(ctx *fiber.Ctx) error {
	// Long ceiling; the batch is bounded by per-send timeouts.
	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := c.Dispatcher.ProcessDue(ctxt)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(summary)
}
