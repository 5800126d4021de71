package system

import (
	"context"
	"time"

	"inteldesk/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type HealthApi struct {
	db    *database.MongodbDB
	cache *redis.Client
}

func NewHealthApi(db *database.MongodbDB, cache *redis.Client) *HealthApi {
	return &HealthApi{db: db, cache: cache}
}

// Setup registers the health check route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", h.HealthCheck)
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Check if the server and its backends are up
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/health [get]
func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mongoStatus := "ok"
	if err := h.db.DB.Client().Ping(ctx, nil); err != nil {
		mongoStatus = "down"
	}

	redisStatus := "ok"
	if err := h.cache.Ping(ctx).Err(); err != nil {
		redisStatus = "down"
	}

	status := fiber.StatusOK
	if mongoStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": mongoStatus,
		"mongo":  mongoStatus,
		"redis":  redisStatus,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
