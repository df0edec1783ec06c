package status

import (
	"time"

	"webboot/core/boot"
	"webboot/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Path is where the boot status is served.
const Path = "/_boot/status"

// Response is the status payload.
type Response struct {
	boot.Report
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// Handler handles HTTP requests for the boot status.
type Handler struct {
	report func() boot.Report
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(report func() boot.Report, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{report: report, logger: logger}
}

// RegisterRoutes registers the status route.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get(Path, h.HandleStatus)
}

// HandleStatus returns the modes, scanned archives and restart state of the boot.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	logger.WithRayID(h.logger, c).Debug("Reporting boot status")

	r := h.report()
	resp := Response{Report: r}
	if !r.Started.IsZero() {
		resp.UptimeSeconds = int64(time.Since(r.Started).Seconds())
	}
	return c.JSON(resp)
}
