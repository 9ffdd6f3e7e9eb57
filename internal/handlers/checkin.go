package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"pincheck/internal/checkin"
	"pincheck/internal/middleware"
	"pincheck/internal/store"
)

// CheckinHandler serves the plain-text endpoints used by the overlay client.
type CheckinHandler struct {
	svc         *checkin.Service
	pins        *store.PinStore
	defaultList int
}

// NewCheckinHandler creates a new check-in handler.
func NewCheckinHandler(svc *checkin.Service, pins *store.PinStore, defaultList int) *CheckinHandler {
	if defaultList <= 0 {
		defaultList = 80
	}
	return &CheckinHandler{svc: svc, pins: pins, defaultList: defaultList}
}

// CheckIn handles GET /checkin?u=<user>&loc=<location> and answers with the
// outcome token as the response body.
func (h *CheckinHandler) CheckIn(c fiber.Ctx) error {
	res := h.svc.CheckIn(c.Context(), checkin.Request{
		User:     c.Query("u"),
		Location: c.Query("loc"),
		Origin:   middleware.Origin(c),
	})

	return c.Status(textStatus(res.Outcome)).SendString(string(res.Outcome))
}

// Pins handles GET /pins?n=<count>.
func (h *CheckinHandler) Pins(c fiber.Ctx) error {
	return c.JSON(h.pins.List(ListSize(c.Query("n"), h.defaultList)))
}

// Ping handles GET /ping.
func (h *CheckinHandler) Ping(c fiber.Ctx) error {
	return c.SendString("pong")
}

// textStatus keeps benign outcomes at 200 so existing clients read the token.
func textStatus(o checkin.Outcome) int {
	switch o {
	case checkin.OutcomeThrottled:
		return fiber.StatusTooManyRequests
	case checkin.OutcomeUpstreamFailed:
		return fiber.StatusBadGateway
	case checkin.OutcomeInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusOK
	}
}

// ListSize parses a requested list length, using def when raw is missing or
// not a number. Clamping to the hard cap happens in the store.
func ListSize(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
