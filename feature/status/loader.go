package status

import (
	"webboot/core/boot"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements loader.Feature for the status endpoint.
type Feature struct {
	enabled bool
	handler *Handler
}

// NewFeature creates the status feature.
func NewFeature(report func() boot.Report, enabled bool, logger *zap.Logger) *Feature {
	return &Feature{enabled: enabled, handler: NewHandler(report, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "status"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
