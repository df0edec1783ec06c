package webapp

import (
	"webboot/core/container"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements loader.Feature for the web application.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the web application feature.
func NewFeature(c *container.Context, handlers map[string]fiber.Handler, logger *zap.Logger) *Feature {
	svc := NewService(c, handlers, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "webapp"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.context != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	return f.handler.RegisterRoutes(app)
}
