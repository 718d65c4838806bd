package sources

import (
	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for source diagnostics.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sources routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/sources", h.HandleListSources)
}

// HandleListSources probes every registered source and reports its status.
func (h *Handler) HandleListSources(c *fiber.Ctx) error {
	reports := h.service.Probe(c.Context())
	return c.JSON(fiber.Map{
		"count":   len(reports),
		"sources": reports,
	})
}
