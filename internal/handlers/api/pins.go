package api

import (
	"github.com/gofiber/fiber/v3"

	"pincheck/internal/handlers"
	"pincheck/internal/store"
	"pincheck/internal/validation"
)

// PinHandler exposes the pin store via JSON API.
type PinHandler struct {
	pins        *store.PinStore
	defaultList int
}

// NewPinHandler creates a new API pin handler.
func NewPinHandler(pins *store.PinStore, defaultList int) *PinHandler {
	if defaultList <= 0 {
		defaultList = 80
	}
	return &PinHandler{pins: pins, defaultList: defaultList}
}

// List handles GET /api/v1/pins?n=<count>.
func (h *PinHandler) List(c fiber.Ctx) error {
	return jsonSuccess(c, h.pins.List(handlers.ListSize(c.Query("n"), h.defaultList)))
}

// Get handles GET /api/v1/pins/:user.
func (h *PinHandler) Get(c fiber.Ctx) error {
	user := validation.NormalizeUser(c.Params("user"))

	pin, ok := h.pins.Get(user)
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "pin not found")
	}

	return jsonSuccess(c, pin)
}
