package codex

import (
	"errors"
	"strings"

	"codex-manager/core/codex"
	"codex-manager/core/logger"
	"codex-manager/core/source"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for codex records.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the codex routes. Static paths are registered
// before the :type parameter so they are matched first.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/codex")
	group.Get("/types", h.HandleListTypes)
	group.Get("/stats", h.HandleStats)
	group.Post("/warm", h.HandleWarm)
	group.Post("/maintenance", h.HandleMaintenance)
	group.Delete("/cache", h.HandleClearCache)
	group.Delete("/cache/:type", h.HandleClearType)
	group.Get("/:type", h.HandleListRecords)
	group.Get("/:type/:id", h.HandleGetRecord)
}

// HandleListTypes returns the known record types.
func (h *Handler) HandleListTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"types": codex.AllRecordTypes()})
}

// HandleListRecords returns the records of one type. Every query parameter
// becomes a filter matched against the record's attributes.
func (h *Handler) HandleListRecords(c *fiber.Ctx) error {
	recordType := codex.RecordType(c.Params("type"))
	l := logger.WithRayID(h.service.logger, c)

	if !recordType.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown record type: " + string(recordType),
		})
	}

	// A comma-separated value becomes a set-membership filter.
	filters := make(map[string]any)
	for key, value := range c.Queries() {
		if strings.Contains(value, ",") {
			filters[key] = strings.Split(value, ",")
		} else {
			filters[key] = value
		}
	}

	records, err := h.service.ListFiltered(c.Context(), recordType, filters)
	if err != nil {
		l.Error("Record listing failed", zap.String("type", string(recordType)), zap.Error(err))
		return c.Status(loadErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"type":    recordType,
		"count":   len(records),
		"records": records,
	})
}

// HandleGetRecord returns one record by ID.
func (h *Handler) HandleGetRecord(c *fiber.Ctx) error {
	recordType := codex.RecordType(c.Params("type"))
	id := c.Params("id")
	l := logger.WithRayID(h.service.logger, c)

	if !recordType.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown record type: " + string(recordType),
		})
	}

	record, err := h.service.Get(c.Context(), recordType, id)
	if err != nil {
		l.Error("Record lookup failed", zap.String("type", string(recordType)), zap.String("id", id), zap.Error(err))
		return c.Status(loadErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "record not found: " + id,
		})
	}

	return c.JSON(record)
}

// HandleWarm loads every configured preload type.
func (h *Handler) HandleWarm(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Warm(c.Context()); err != nil {
		l.Error("Cache warm failed", zap.Error(err))
		return c.Status(loadErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "warmed", "stats": h.service.Stats()})
}

// HandleStats returns a diagnostic snapshot of the cache.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// HandleMaintenance runs one maintenance pass immediately.
func (h *Handler) HandleMaintenance(c *fiber.Ctx) error {
	report := h.service.Maintain()
	return c.JSON(fiber.Map{
		"expired": report.Expired,
		"evicted": report.Evicted,
		"removed": report.Removed(),
	})
}

// HandleClearCache drops every cached entry.
func (h *Handler) HandleClearCache(c *fiber.Ctx) error {
	h.service.Clear()
	return c.JSON(fiber.Map{"status": "cleared"})
}

// HandleClearType drops one cached record type.
func (h *Handler) HandleClearType(c *fiber.Ctx) error {
	recordType := codex.RecordType(c.Params("type"))
	if !recordType.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown record type: " + string(recordType),
		})
	}
	h.service.ClearType(recordType)
	return c.JSON(fiber.Map{"status": "cleared", "type": recordType})
}

// loadErrorStatus maps load failures to HTTP status codes. A load where
// every source failed or timed out surfaces as 503 so clients can retry.
func loadErrorStatus(err error) int {
	if errors.Is(err, source.ErrAllSourcesFailed) || errors.Is(err, source.ErrLoadTimeout) {
		return fiber.StatusServiceUnavailable
	}
	if errors.Is(err, codex.ErrUnknownRecordType) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}
