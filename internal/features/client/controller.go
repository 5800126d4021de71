package client

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ClientController struct {
	Service ClientService
}

func NewClientController(service ClientService) *ClientController {
	return &ClientController{Service: service}
}

// CreateClient godoc
// @Summary Create client
// @Tags clients
// @Accept json
// @Produce json
// @Success 201 {object} Client
// @Router /api/clients [post]
func (c *ClientController) CreateClient(ctx *fiber.Ctx) error {
	var client Client
	if err := ctx.BodyParser(&client); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.Service.CreateClient(ctxt, &client); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(client)
}

// ListClients godoc
// @Summary List clients
// @Tags clients
// @Produce json
// @Param active query boolean false "Only active clients"
// @Success 200 {array} Client
// @Router /api/clients [get]
func (c *ClientController) ListClients(ctx *fiber.Ctx) error {
	activeOnly := ctx.Query("active") == "true"

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clients, err := c.Service.ListClients(ctxt, activeOnly)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(clients)
}

// GetClient godoc
// @Summary Get client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Client
// @Router /api/clients/{id} [get]
func (c *ClientController) GetClient(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := c.Service.GetClient(ctxt, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if client == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}
	return ctx.JSON(client)
}

// UpdateClient godoc
// @Summary Update client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} Client
// @Router /api/clients/{id} [put]
func (c *ClientController) UpdateClient(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	existing, err := c.Service.GetClient(ctxt, id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if existing == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	var client Client
	if err := ctx.BodyParser(&client); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	client.ID = existing.ID
	client.ClientID = existing.ClientID
	client.CreatedAt = existing.CreatedAt

	if err := c.Service.UpdateClient(ctxt, &client); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(client)
}

// DeleteClient godoc
// @Summary Delete client
// @Tags clients
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/clients/{id} [delete]
func (c *ClientController) DeleteClient(ctx *fiber.Ctx) error {
	id := ctx.Params("id")

	ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Service.DeleteClient(ctxt, id); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Client deleted"})
}
