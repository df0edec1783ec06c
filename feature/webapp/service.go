package webapp

import (
	"fmt"
	"net/http"
	"strings"

	"webboot/core/container"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"go.uber.org/zap"
)

// Route is a container mapping resolved to its handler.
type Route struct {
	container.Mapping
	handler fiber.Handler
}

// Service resolves the container's mappings and resources into routes.
type Service struct {
	context  *container.Context
	handlers map[string]fiber.Handler
	logger   *zap.Logger
}

// NewService creates a service over a started context. handlers maps the handler
// names used in fragments and handler indexes to fiber handlers.
func NewService(c *container.Context, handlers map[string]fiber.Handler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{context: c, handlers: handlers, logger: logger}
}

// Prefix returns the mount prefix derived from the context path.
func (s *Service) Prefix() string {
	return strings.TrimSuffix(s.context.Path(), "/")
}

// Routes resolves every mapping. A mapping naming an unknown handler is an error.
func (s *Service) Routes() ([]Route, error) {
	routes := make([]Route, 0, len(s.context.Mappings()))
	for _, m := range s.context.Mappings() {
		h, ok := s.handlers[m.Handler]
		if !ok {
			return nil, fmt.Errorf("no handler named %s for %s (declared by %s)", m.Handler, m.Pattern, m.Source)
		}
		routes = append(routes, Route{Mapping: m, handler: h})
	}
	return routes, nil
}

// Resources returns a static file middleware per resource archive.
func (s *Service) Resources() []fiber.Handler {
	sets := s.context.Resources()
	out := make([]fiber.Handler, 0, len(sets))
	for _, rs := range sets {
		s.logger.Debug("Serving resources", zap.String("archive", rs.Archive))
		out = append(out, filesystem.New(filesystem.Config{
			Root:   http.FS(rs.FS),
			Index:  "index.html",
			Browse: false,
		}))
	}
	return out
}
