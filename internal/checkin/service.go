package checkin

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"pincheck/internal/geocode"
	"pincheck/internal/metrics"
	"pincheck/internal/models"
	"pincheck/internal/telemetry"
	"pincheck/internal/validation"
)

// Outcome is the terminal state of a check-in.
type Outcome string

// Check-in outcomes. The string value is the status token sent to clients.
const (
	OutcomeOK             Outcome = "ok"
	OutcomeNoLocation     Outcome = "no location"
	OutcomeThrottled      Outcome = "throttled"
	OutcomeNotFound       Outcome = "not found"
	OutcomeUpstreamFailed Outcome = "geocoder unavailable"
	OutcomeInternal       Outcome = "internal error"
)

// IsFailure reports whether the outcome is a server-side failure.
func (o Outcome) IsFailure() bool {
	return o == OutcomeUpstreamFailed || o == OutcomeInternal
}

// Resolver resolves a normalized query to a location.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*models.GeoResult, error)
}

// Throttle gates check-ins per user and per origin.
type Throttle interface {
	TryAcquire(userKey, originKey string) bool
}

// PinWriter stores the resulting pin.
type PinWriter interface {
	Upsert(pin models.Pin)
}

// Request is a raw check-in as received from a client.
type Request struct {
	User     string
	Location string
	Origin   string
}

// Result describes how a check-in ended.
type Result struct {
	Outcome Outcome
	Message string
	Pin     *models.Pin
}

// Service runs the check-in pipeline: normalize, throttle, resolve, store.
type Service struct {
	resolver Resolver
	throttle Throttle
	pins     PinWriter
	log      *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the pipeline collaborators.
func NewService(resolver Resolver, throttle Throttle, pins PinWriter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		resolver: resolver,
		throttle: throttle,
		pins:     pins,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CheckIn runs one check-in to a terminal outcome. It never returns an error
// and never panics; failures are reported through Result.
func (s *Service) CheckIn(ctx context.Context, req Request) (res Result) {
	ctx, span := telemetry.StartSpan(ctx, "checkin.CheckIn")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("check-in panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			res = Result{Outcome: OutcomeInternal, Message: fmt.Sprint(r)}
		}
		span.SetAttributes(attribute.String("checkin.outcome", string(res.Outcome)))
		metrics.RecordCheckin(string(res.Outcome))
	}()

	user := validation.NormalizeUser(req.User)
	location := validation.NormalizeLocation(req.Location)
	span.SetAttributes(attribute.String("checkin.user", user))

	if location == "" {
		return Result{Outcome: OutcomeNoLocation}
	}

	if !s.throttle.TryAcquire(user, req.Origin) {
		s.log.Debug("check-in throttled", zap.String("user", user), zap.String("origin", req.Origin))
		return Result{Outcome: OutcomeThrottled, Message: "please wait before checking in again"}
	}

	found, err := s.resolver.Resolve(ctx, location)
	if err != nil {
		if errors.Is(err, geocode.ErrUpstream) {
			return Result{Outcome: OutcomeUpstreamFailed, Message: "location lookup is unavailable, try again later"}
		}
		s.log.Error("check-in resolve failed", zap.String("location", location), zap.Error(err))
		return Result{Outcome: OutcomeInternal, Message: err.Error()}
	}
	if found == nil {
		return Result{Outcome: OutcomeNotFound}
	}

	pin := models.Pin{
		ID:        s.newID(),
		User:      user,
		Display:   found.DisplayName,
		Lat:       found.Latitude,
		Lon:       found.Longitude,
		CreatedAt: s.now(),
	}
	s.pins.Upsert(pin)

	s.log.Info("checked in",
		zap.String("user", user),
		zap.String("display", pin.Display),
		zap.Float64("lat", pin.Lat),
		zap.Float64("lon", pin.Lon))
	return Result{Outcome: OutcomeOK, Pin: &pin}
}
