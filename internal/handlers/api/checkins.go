package api

import (
	"github.com/gofiber/fiber/v3"

	"pincheck/internal/checkin"
	"pincheck/internal/middleware"
	"pincheck/internal/models"
)

// CheckinHandler handles check-ins via JSON API.
type CheckinHandler struct {
	svc *checkin.Service
}

// NewCheckinHandler creates a new API check-in handler.
func NewCheckinHandler(svc *checkin.Service) *CheckinHandler {
	return &CheckinHandler{svc: svc}
}

// Create handles POST /api/v1/checkins.
func (h *CheckinHandler) Create(c fiber.Ctx) error {
	var req models.CheckInRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	res := h.svc.CheckIn(c.Context(), checkin.Request{
		User:     req.User,
		Location: req.Location,
		Origin:   middleware.Origin(c),
	})

	if res.Outcome != checkin.OutcomeOK {
		msg := string(res.Outcome)
		if res.Message != "" {
			msg += ": " + res.Message
		}
		return jsonError(c, apiStatus(res.Outcome), msg)
	}

	return jsonStatus(c, fiber.StatusCreated, models.CheckInResponse{
		Outcome: string(res.Outcome),
		Pin:     res.Pin,
	})
}

// apiStatus maps every non-ok outcome to an HTTP error status.
func apiStatus(o checkin.Outcome) int {
	switch o {
	case checkin.OutcomeNoLocation:
		return fiber.StatusBadRequest
	case checkin.OutcomeNotFound:
		return fiber.StatusNotFound
	case checkin.OutcomeThrottled:
		return fiber.StatusTooManyRequests
	case checkin.OutcomeUpstreamFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
