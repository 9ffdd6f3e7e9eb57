package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr         string
	StaticDir          string
	TrustedProxyHeader string // e.g. "X-Forwarded-For" when behind a proxy
	TrustedProxies     string // Comma-separated proxy IPs/CIDRs allowed to set the header
	CORSOrigins        string // Comma-separated allowed origins

	// Geocoding
	Geocoder          string // "nominatim" or "photon"
	GeocoderBaseURL   string
	GeocoderUserAgent string
	GeocodeTimeout    time.Duration
	GeocodeCacheSize  int
	GeocodeCacheTTL   time.Duration

	// Throttling
	UserCooldown   time.Duration
	OriginCooldown time.Duration
	RateLimitMax   int    // requests per minute per IP across all routes
	RedisURL       string // shared limiter storage; memory when empty

	// Pins
	MaxPins       int
	DefaultList   int
	SweepInterval time.Duration

	// Tracing
	OTELEndpoint string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServerAddr:         serverAddr(),
		StaticDir:          getEnv("STATIC_DIR", "./public"),
		TrustedProxyHeader: getEnv("TRUSTED_PROXY_HEADER", ""),
		TrustedProxies:     getEnv("TRUSTED_PROXIES", ""),
		CORSOrigins:        getEnv("CORS_ORIGINS", ""),

		Geocoder:          getEnv("GEOCODER", "nominatim"),
		GeocoderBaseURL:   getEnv("GEOCODER_BASE_URL", ""),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "PinCheck/1.0 (contact: admin@example.com)"),
		GeocodeTimeout:    getEnvDuration("GEOCODE_TIMEOUT", 10*time.Second),
		GeocodeCacheSize:  getEnvInt("GEOCODE_CACHE_SIZE", 1000),
		GeocodeCacheTTL:   getEnvDuration("GEOCODE_CACHE_TTL", 7*24*time.Hour),

		UserCooldown:   getEnvDuration("USER_COOLDOWN", 30*time.Second),
		OriginCooldown: getEnvDuration("ORIGIN_COOLDOWN", 5*time.Second),
		RateLimitMax:   getEnvInt("RATE_LIMIT_MAX", 120),
		RedisURL:       getEnv("REDIS_URL", ""),

		MaxPins:       getEnvInt("MAX_PINS", 300),
		DefaultList:   getEnvInt("DEFAULT_LIST", 80),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),

		OTELEndpoint: getEnv("OTEL_ENDPOINT", ""),
	}
}

// serverAddr prefers SERVER_ADDR and falls back to a bare PORT.
func serverAddr() string {
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		return addr
	}
	return ":" + getEnv("PORT", "3000")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
