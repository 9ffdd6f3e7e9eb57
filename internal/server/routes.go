package server

import (
	"os"

	"github.com/gofiber/fiber/v3/middleware/static"
	"go.uber.org/zap"

	"pincheck/internal/checkin"
	"pincheck/internal/geocode"
	"pincheck/internal/handlers"
	"pincheck/internal/handlers/api"
	"pincheck/internal/middleware"
	"pincheck/internal/store"
)

// Deps are the long-lived components the routes serve.
type Deps struct {
	Service *checkin.Service
	Pins    *store.PinStore
	Cache   *geocode.Cache
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	checkinHandler := handlers.NewCheckinHandler(deps.Service, deps.Pins, s.Cfg.DefaultList)
	probeHandler := handlers.NewProbeHandler(deps.Pins, deps.Cache)

	// Overlay client routes (plain text / bare JSON)
	s.App.Get("/checkin", checkinHandler.CheckIn)
	s.App.Get("/pins", checkinHandler.Pins)
	s.App.Get("/ping", checkinHandler.Ping)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", middleware.PrometheusHandler())

	// JSON API
	apiCheckins := api.NewCheckinHandler(deps.Service)
	apiPins := api.NewPinHandler(deps.Pins, s.Cfg.DefaultList)

	v1 := s.App.Group("/api/v1")
	v1.Post("/checkins", apiCheckins.Create)
	v1.Get("/pins", apiPins.List)
	v1.Get("/pins/:user", apiPins.Get)

	// Static overlay assets
	if s.Cfg.StaticDir != "" {
		if info, err := os.Stat(s.Cfg.StaticDir); err == nil && info.IsDir() {
			s.App.Get("/*", static.New(s.Cfg.StaticDir))
		} else {
			s.log.Warn("static directory not found, skipping", zap.String("dir", s.Cfg.StaticDir))
		}
	}
}
