package handlers

import (
	"github.com/gofiber/fiber/v3"

	"pincheck/internal/geocode"
	"pincheck/internal/models"
	"pincheck/internal/store"
)

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	pins  *store.PinStore
	cache *geocode.Cache
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(pins *store.PinStore, cache *geocode.Cache) *ProbeHandler {
	return &ProbeHandler{pins: pins, cache: cache}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK with the current store sizes.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:       "ok",
		Pins:         h.pins.Len(),
		GeocodeCache: h.cache.Len(),
	})
}

// Readiness handles the /readyz endpoint. All state is in memory, so the
// process is ready as soon as it can answer.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
