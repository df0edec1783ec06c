package webapp

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler mounts the web application routes.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts mappings, then resources, under the context path.
//
// Patterns follow the usual servlet forms: "/exact", "/prefix/*", "*.ext" and "/"
// as the default route, which is mounted after everything else.
func (h *Handler) RegisterRoutes(app fiber.Router) error {
	routes, err := h.service.Routes()
	if err != nil {
		return err
	}
	group := app.Group(h.service.Prefix())

	var fallback fiber.Handler
	for _, r := range routes {
		h.service.logger.Debug("Mounting handler",
			zap.String("pattern", r.Pattern),
			zap.String("handler", r.Handler),
			zap.String("source", r.Source),
		)
		switch {
		case r.Pattern == "/" || r.Pattern == "":
			fallback = r.handler
		case strings.HasPrefix(r.Pattern, "*."):
			group.Use(extension(strings.TrimPrefix(r.Pattern, "*"), r.handler))
		default:
			group.All(r.Pattern, r.handler)
		}
	}

	for _, res := range h.service.Resources() {
		group.Use(res)
	}
	if fallback != nil {
		group.All("/*", func(c *fiber.Ctx) error {
			// A resource miss leaves 404 behind.
			c.Status(fiber.StatusOK)
			return fallback(c)
		})
	}
	return nil
}

func extension(ext string, handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.HasSuffix(c.Path(), ext) {
			return handler(c)
		}
		return c.Next()
	}
}
