package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	redisstore "github.com/gofiber/storage/redis/v3"
	"go.uber.org/zap"

	"pincheck/internal/config"
	"pincheck/internal/middleware"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	log     *zap.Logger
	storage fiber.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName: "pincheck",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			} else {
				log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}

			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(code).JSON(fiber.Map{
					"status": "error",
					"error":  message,
				})
			}
			return c.Status(code).SendString(message)
		},
	})

	s := &Server{App: app, Cfg: cfg, log: log}

	// Global middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDev()}))
	app.Use(fiberlogger.New())
	app.Use(middleware.PrometheusMiddleware())

	// CORS middleware; the overlay client is served from other origins
	corsOrigins := []string{"*"}
	if cfg.CORSOrigins != "" {
		corsOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       86400,
	}))

	var proxies []string
	if cfg.TrustedProxies != "" {
		proxies = strings.Split(cfg.TrustedProxies, ",")
	}
	origin := middleware.NewOriginMiddleware(cfg.TrustedProxyHeader, proxies)
	app.Use(origin.Handle)

	// Rate limiting middleware - RateLimitMax requests per minute per origin
	limiterCfg := limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return middleware.Origin(c)
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/ping" || c.Path() == "/healthz" || c.Path() == "/readyz"
		},
		LimitReached: func(c fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"status": "error",
					"error":  "throttled",
				})
			}
			return c.Status(fiber.StatusTooManyRequests).SendString("throttled")
		},
	}
	if cfg.RedisURL != "" {
		s.storage = redisstore.New(redisstore.Config{URL: cfg.RedisURL})
		limiterCfg.Storage = s.storage
		log.Info("rate limiter using redis storage")
	}
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiterCfg))
	}

	return s
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.log.Info("starting server", zap.String("addr", s.Cfg.ServerAddr))
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown gracefully shuts down the server and releases limiter storage.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
