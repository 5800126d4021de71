package tracking

import (
	"context"
	"encoding/base64"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// 1x1 transparent GIF served by the open pixel.
var pixelGIF, _ = base64.StdEncoding.DecodeString("R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

type TrackingController struct {
	Service TrackingService
	log     *zap.Logger
}

func NewTrackingController(service TrackingService, log *zap.Logger) *TrackingController {
	return &TrackingController{Service: service, log: log}
}

// Pixel godoc
// @Summary Open-tracking pixel
// @Tags tracking
// @Produce image/gif
// @Param t query string true "Tracking ID"
// @Router /api/track/pixel [get]
func (c *TrackingController) Pixel(ctx *fiber.Ctx) error {
	trackingID := ctx.Query("t")
	if trackingID != "" {
		ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Recording must never break pixel delivery.
		if err := c.Service.LogEvent(ctxt, &Event{
			TrackingID: trackingID,
			Type:       EventOpen,
			IP:         ctx.IP(),
			UserAgent:  ctx.Get("User-Agent"),
		}); err != nil {
			c.log.Warn("failed to record open", zap.String("tracking_id", trackingID), zap.Error(err))
		}
	}

	ctx.Set("Content-Type", "image/gif")
	ctx.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	ctx.Set("Pragma", "no-cache")
	ctx.Set("Expires", "0")
	return ctx.Send(pixelGIF)
}

// Link godoc
// @Summary Click-tracking redirect
// @Tags tracking
// @Param t query string true "Tracking ID"
// @Param u query string true "Target URL"
// @Param l query string false "Link ID"
// @Router /api/track/link [get]
func (c *TrackingController) Link(ctx *fiber.Ctx) error {
	trackingID := ctx.Query("t")
	target := ctx.Query("u")
	linkID := ctx.Query("l")

	if !isSafeRedirect(target) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid target URL"})
	}

	if trackingID != "" {
		ctxt, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.Service.LogEvent(ctxt, &Event{
			TrackingID: trackingID,
			Type:       EventClick,
			LinkID:     linkID,
			TargetURL:  target,
			IP:         ctx.IP(),
			UserAgent:  ctx.Get("User-Agent"),
		}); err != nil {
			c.log.Warn("failed to record click", zap.String("tracking_id", trackingID), zap.Error(err))
		}
	}

	return ctx.Redirect(target, fiber.StatusFound)
}

// isSafeRedirect allows only public http(s) targets, keeping the
// redirect from being abused as an open proxy into internal hosts.
func isSafeRedirect(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return false
		}
	}
	return true
}

// ListRecords godoc
// @Summary List tracking records
// @Tags tracking
// @Produce json
// @Param limit query int false "Max records"
// @Success 200 {array} EmailTracking
// @Router /api/tracking [get]
func (c *TrackingController) ListRecords(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := c.Service.ListRecords(ctxt, int64(ctx.QueryInt("limit")))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(records)
}

// GetRecord godoc
// @Summary Get one tracking record with its events
// @Tags tracking
// @Produce json
// @Param trackingId path string true "Tracking ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/tracking/{trackingId} [get]
func (c *TrackingController) GetRecord(ctx *fiber.Ctx) error {
	trackingID := ctx.Params("trackingId")

	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record, err := c.Service.GetRecord(ctxt, trackingID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if record == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tracking record not found"})
	}

	events, err := c.Service.ListEvents(ctxt, trackingID, 0)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"record": record, "events": events})
}

// Stats godoc
// @Summary Aggregate engagement stats
// @Tags tracking
// @Produce json
// @Success 200 {object} TrackingStats
// @Router /api/tracking/stats [get]
func (c *TrackingController) Stats(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.Service.Stats(ctxt)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(stats)
}
