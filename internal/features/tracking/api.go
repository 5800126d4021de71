package tracking

import (
	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type TrackingApi struct {
	trackingController *TrackingController
	hub                *Hub
	config             *config.Config
}

func NewTrackingApi(trackingController *TrackingController, hub *Hub, config *config.Config) *TrackingApi {
	return &TrackingApi{
		trackingController: trackingController,
		hub:                hub,
		config:             config,
	}
}

func (h *TrackingApi) Setup(app *fiber.App) {
	// Hit by mail clients; must stay unauthenticated.
	app.Get("/api/track/pixel", h.trackingController.Pixel)
	app.Get("/api/track/link", h.trackingController.Link)

	analytics := app.Group("/api/tracking",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAnalyst))
	analytics.Get("/", h.trackingController.ListRecords)
	analytics.Get("/stats", h.trackingController.Stats)
	analytics.Get("/:trackingId", h.trackingController.GetRecord)

	// Live event feed for the dashboard.
	app.Use("/ws/tracking", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/tracking", websocket.New(func(conn *websocket.Conn) {
		h.hub.Register(conn)
		defer h.hub.Unregister(conn)

		// Drain client frames; the feed is one-way.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}
