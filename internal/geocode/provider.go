package geocode

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"pincheck/internal/models"
)

// Provider looks up free text at an external geocoding service.
// Lookup returns (nil, nil) when the service has no candidate and an error
// wrapping ErrUpstream when the service could not be used.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, query string) (*models.GeoResult, error)
}

// ProviderConfig configures the HTTP client shared by the providers.
type ProviderConfig struct {
	Name      string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NewProvider builds the backend named in cfg.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case "", NominatimName:
		return NewNominatim(cfg), nil
	case PhotonName:
		return NewPhoton(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Name)
	}
}

func newRestyClient(cfg ProviderConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")
}

// checkStatus maps a transport error or a non-2xx response to ErrUpstream.
func checkStatus(provider string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s request: %v", ErrUpstream, provider, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrUpstream, provider, code)
	}
	return nil
}

// parseCoordinate parses a provider coordinate; unparsable text becomes NaN
// so it is rejected together with other non-finite values.
func parseCoordinate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
